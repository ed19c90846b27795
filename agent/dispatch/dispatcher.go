// Package dispatch routes each incoming message to exactly one handling
// branch and guarantees every message reaches a terminal envelope.
package dispatch

import (
	"context"
	"errors"
	"time"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	statex "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/state"
)

// Retriever is the FAQ retrieval branch contract.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (contractx.RetrievalResult, error)
}

// OrderLookup is the order-tracking branch contract.
type OrderLookup interface {
	Lookup(ctx context.Context, orderID string) (*contractx.Order, error)
}

// RefundEvaluator is the refund branch contract. Implementations must be
// pure; the dispatcher may be invoked concurrently.
type RefundEvaluator interface {
	Evaluate(order *contractx.Order, reasonText string, now time.Time) contractx.RefundDecision
}

type Dispatcher struct {
	store      statex.Store
	classifier contractx.Classifier
	orders     OrderLookup
	refunds    RefundEvaluator
	retriever  Retriever
	phraser    contractx.Phraser

	graphRunner graphRunner

	cfg Config
	now func() time.Time
}

func New(
	store statex.Store,
	classifier contractx.Classifier,
	orders OrderLookup,
	refunds RefundEvaluator,
	retriever Retriever,
	phraser contractx.Phraser,
	cfg Config,
) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if classifier == nil {
		return nil, errors.New("classifier is required")
	}
	if orders == nil {
		return nil, errors.New("order lookup is required")
	}
	if refunds == nil {
		return nil, errors.New("refund evaluator is required")
	}
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	// phraser may be nil; fallback rendering takes over.

	d := &Dispatcher{
		store:      store,
		classifier: classifier,
		orders:     orders,
		refunds:    refunds,
		retriever:  retriever,
		phraser:    phraser,
		cfg:        cfg.withDefaults(),
		now:        time.Now,
	}

	runner, err := d.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	d.graphRunner = runner

	return d, nil
}

// HandleMessage runs one message through the pipeline. Only request
// validation can fail; every other fault is converted into the envelope.
func (d *Dispatcher) HandleMessage(ctx context.Context, sessionID, text string) (GraphOutput, error) {
	return d.graphRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
}

// Reset drops the session context for a session id.
func (d *Dispatcher) Reset(ctx context.Context, sessionID string) error {
	return d.store.Delete(ctx, sessionID)
}
