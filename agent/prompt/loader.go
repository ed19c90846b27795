package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/classifier.txt
	classifierRaw string

	//go:embed template/phraser.txt
	phraserRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Classifier string
	Phraser    string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings. Safe to
// call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Classifier: strings.TrimSpace(classifierRaw),
		Phraser:    strings.TrimSpace(phraserRaw),
	}
}
