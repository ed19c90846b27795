package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	indexx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/index"
)

type Config struct {
	TopK     int     `envconfig:"TOP_K" split_words:"true" default:"5"`
	MinScore float32 `envconfig:"MIN_SCORE" split_words:"true" default:"0.3"`
}

// Engine wraps the embedding index with top-k selection and a minimum
// similarity threshold. It never fabricates an answer: an empty result is a
// valid outcome the caller must turn into a no-answer or escalation reply.
type Engine struct {
	embedder contractx.Embedder
	topK     int
	minScore float32

	// current is swapped atomically on rebuild; readers never see a
	// partially built index.
	current atomic.Pointer[snapshot]
}

type snapshot struct {
	ix      *indexx.Index
	entries []contractx.FAQEntry
}

func NewEngine(embedder contractx.Embedder, cfg Config) (*Engine, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", contractx.ErrValidation)
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &Engine{
		embedder: embedder,
		topK:     topK,
		minScore: cfg.MinScore,
	}, nil
}

// Rebuild embeds the corpus, builds a fresh index off to the side, and
// atomically swaps it in. The previous index stays queryable until the swap.
func (e *Engine) Rebuild(ctx context.Context, entries []contractx.FAQEntry) error {
	prepared := make([]contractx.FAQEntry, len(entries))
	copy(prepared, entries)

	missing := make([]int, 0, len(prepared))
	texts := make([]string, 0, len(prepared))
	for i, entry := range prepared {
		if len(entry.Embedding) > 0 {
			continue
		}
		missing = append(missing, i)
		// Question and answer are embedded together for better context.
		texts = append(texts, strings.TrimSpace(entry.Question+" "+entry.Answer))
	}

	if len(texts) > 0 {
		vectors, err := e.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embed corpus: %v", contractx.ErrCollaborator, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: embedder returned %d vectors for %d texts",
				contractx.ErrCollaborator, len(vectors), len(texts))
		}
		for j, i := range missing {
			prepared[i].Embedding = vectors[j]
		}
	}

	ix, err := indexx.Build(prepared)
	if err != nil {
		return err
	}

	e.current.Store(&snapshot{ix: ix, entries: prepared})
	log.Info().Int("entries", ix.Len()).Int("dim", ix.Dimension()).Msg("faq index rebuilt")
	return nil
}

// Retrieve embeds the query and returns the entries above the similarity
// threshold, best first. Deterministic for a fixed index and embedder.
func (e *Engine) Retrieve(ctx context.Context, query string) (contractx.RetrievalResult, error) {
	snap := e.current.Load()
	if snap == nil || snap.ix.Len() == 0 {
		return contractx.RetrievalResult{}, nil
	}

	vectors, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", contractx.ErrCollaborator, err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector for query", contractx.ErrCollaborator)
	}

	hits, err := snap.ix.Query(vectors[0], e.topK)
	if err != nil {
		return nil, err
	}

	result := make(contractx.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < e.minScore {
			continue
		}
		result = append(result, contractx.ScoredEntry{
			Entry: snap.entries[hit.Position],
			Score: hit.Score,
		})
	}
	return result, nil
}

// Size reports how many entries the live index holds.
func (e *Engine) Size() int {
	snap := e.current.Load()
	if snap == nil {
		return 0
	}
	return snap.ix.Len()
}
