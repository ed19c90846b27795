package retrieval

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

// fakeEmbedder maps known texts to fixed unit vectors and returns a default
// for anything else, so retrieval scores are deterministic in tests.
type fakeEmbedder struct {
	vectors        map[string][]float32
	fallbackVector []float32
	err            error
	calls          int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if vec, ok := f.vectors[text]; ok {
			out = append(out, vec)
			continue
		}
		out = append(out, f.fallbackVector)
	}
	return out, nil
}

func testCorpus() []contractx.FAQEntry {
	return []contractx.FAQEntry{
		{ID: "faq_cancel", Question: "How can I cancel my order?", Answer: "Use the app.", Embedding: []float32{1, 0, 0}},
		{ID: "faq_refund", Question: "How do refunds work?", Answer: "3-5 days.", Embedding: []float32{0, 1, 0}},
		{ID: "faq_hours", Question: "What are your hours?", Answer: "24/7.", Embedding: []float32{0, 0, 1}},
	}
}

func TestRetrieveOrdersAndFilters(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{
		vectors: map[string][]float32{
			"cancel my order": {0.9, 0.4, 0},
		},
	}
	engine, err := NewEngine(embedder, Config{TopK: 5, MinScore: 0.3})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Rebuild(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	results, err := engine.Retrieve(context.Background(), "cancel my order")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Entry.ID != "faq_cancel" {
		t.Fatalf("expected faq_cancel first, got %s", results[0].Entry.ID)
	}
	if results[1].Entry.ID != "faq_refund" {
		t.Fatalf("expected faq_refund second, got %s", results[1].Entry.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Fatalf("results not ordered best-first: %f <= %f", results[0].Score, results[1].Score)
	}
}

func TestRetrieveThresholdMonotonicity(t *testing.T) {
	t.Parallel()

	// Raising the threshold can only shrink the result set.
	query := "cancel my order"
	vectors := map[string][]float32{query: {0.9, 0.4, 0.1}}

	prev := -1
	for _, minScore := range []float32{0.0, 0.3, 0.6, 0.95} {
		engine, err := NewEngine(&fakeEmbedder{vectors: vectors}, Config{TopK: 5, MinScore: minScore})
		if err != nil {
			t.Fatalf("NewEngine() error = %v", err)
		}
		if err := engine.Rebuild(context.Background(), testCorpus()); err != nil {
			t.Fatalf("Rebuild() error = %v", err)
		}

		results, err := engine.Retrieve(context.Background(), query)
		if err != nil {
			t.Fatalf("Retrieve() error = %v", err)
		}
		if prev >= 0 && len(results) > prev {
			t.Fatalf("min_score=%f returned %d results, more than %d at lower threshold",
				minScore, len(results), prev)
		}
		prev = len(results)
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(&fakeEmbedder{}, Config{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	results, err := engine.Retrieve(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestRebuildEmbedsMissingOnly(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{fallbackVector: []float32{0.5, 0.5, 0}}
	engine, err := NewEngine(embedder, Config{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	corpus := testCorpus()
	corpus = append(corpus, contractx.FAQEntry{
		ID: "faq_new", Question: "Do you deliver to my area?", Answer: "Check the app.",
	})

	if err := engine.Rebuild(context.Background(), corpus); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if embedder.calls != 1 {
		t.Fatalf("expected one embed batch, got %d", embedder.calls)
	}
	if engine.Size() != 4 {
		t.Fatalf("expected 4 entries, got %d", engine.Size())
	}
}

func TestRebuildKeepsOldIndexOnFailure(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{fallbackVector: []float32{0.5, 0.5, 0}}
	engine, err := NewEngine(embedder, Config{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Rebuild(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	embedder.err = errors.New("embedding service down")
	err = engine.Rebuild(context.Background(), []contractx.FAQEntry{
		{ID: "faq_broken", Question: "q", Answer: "a"},
	})
	if !errors.Is(err, contractx.ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}

	// The previous snapshot must still serve queries.
	if engine.Size() != 3 {
		t.Fatalf("expected old index with 3 entries, got %d", engine.Size())
	}
}

func TestRetrieveEmbedderFailure(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{}
	engine, err := NewEngine(embedder, Config{})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Rebuild(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	embedder.err = errors.New("embedding service down")
	_, err = engine.Retrieve(context.Background(), "anything")
	if !errors.Is(err, contractx.ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
}
