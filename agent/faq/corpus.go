// Package faq loads the question/answer corpus consumed once at startup to
// build the embedding index.
package faq

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

//go:embed corpus/faqs.json
var defaultCorpusRaw []byte

type rawEntry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DefaultCorpus returns the embedded FAQ corpus in file order.
func DefaultCorpus() ([]contractx.FAQEntry, error) {
	return decode(defaultCorpusRaw)
}

// LoadFile reads a corpus override from a JSON file.
func LoadFile(path string) ([]contractx.FAQEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq corpus: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) ([]contractx.FAQEntry, error) {
	var rows []rawEntry
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("parse faq corpus: %w", err)
	}

	entries := make([]contractx.FAQEntry, 0, len(rows))
	for i, row := range rows {
		question := strings.TrimSpace(row.Question)
		answer := strings.TrimSpace(row.Answer)
		if question == "" || answer == "" {
			return nil, fmt.Errorf("%w: faq entry %d is missing question or answer", contractx.ErrValidation, i)
		}
		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("faq_%03d", i+1)
		}
		entries = append(entries, contractx.FAQEntry{
			ID:       id,
			Question: question,
			Answer:   answer,
		})
	}
	return entries, nil
}
