package refund

import (
	"testing"
	"time"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

func deliveredOrder(amount float64, deliveredAgo time.Duration, now time.Time) *contractx.Order {
	deliveredAt := now.Add(-deliveredAgo)
	return &contractx.Order{
		ID:          "FD123456789",
		Status:      contractx.OrderDelivered,
		PlacedAt:    deliveredAt.Add(-time.Hour),
		DeliveredAt: &deliveredAt,
		Amount:      amount,
	}
}

func TestEvaluateStrongCategoryWithinWindow(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	d := e.Evaluate(deliveredOrder(28.50, 2*time.Hour, now), "the food was cold when it arrived", now)
	if !d.Eligible {
		t.Fatalf("expected eligible, got %+v", d)
	}
	if d.Rationale != contractx.RationaleStrongCategory {
		t.Fatalf("expected strong_category, got %s", d.Rationale)
	}
	if d.Amount != 28.50 {
		t.Fatalf("expected full amount 28.50, got %f", d.Amount)
	}
	if d.RequiresEscalation {
		t.Fatalf("strong category inside window must not escalate")
	}
}

func TestEvaluateWeakCategoryExcluded(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	d := e.Evaluate(deliveredOrder(20, time.Hour, now), "I didn't like the taste", now)
	if d.Eligible {
		t.Fatalf("taste complaint must not be eligible, got %+v", d)
	}
	if d.Rationale != contractx.RationalePolicyExcluded {
		t.Fatalf("expected policy_excluded, got %s", d.Rationale)
	}
	if d.RequiresEscalation {
		t.Fatalf("weak category must not escalate")
	}
}

func TestEvaluateWindowExpired(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{GraceWindow: 24 * time.Hour})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	d := e.Evaluate(deliveredOrder(20, 48*time.Hour, now), "they sent the wrong item", now)
	if d.Eligible {
		t.Fatalf("expired window must not be eligible, got %+v", d)
	}
	if d.Rationale != contractx.RationaleWindowExpired {
		t.Fatalf("expected window_expired, got %s", d.Rationale)
	}
}

func TestEvaluateHealthSafetyEscalatesRegardlessOfWindow(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{GraceWindow: 24 * time.Hour})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	for _, order := range []*contractx.Order{
		deliveredOrder(20, time.Hour, now),
		deliveredOrder(20, 72*time.Hour, now),
		nil,
	} {
		d := e.Evaluate(order, "I got food poisoning and felt sick all night", now)
		if !d.RequiresEscalation {
			t.Fatalf("health/safety must escalate, got %+v", d)
		}
		if d.Rationale != contractx.RationaleHealthSafety {
			t.Fatalf("expected health_safety, got %s", d.Rationale)
		}
		if d.Eligible {
			t.Fatalf("escalated decision must leave eligibility undetermined")
		}
	}
}

func TestEvaluateNotDelivered(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	inTransit := &contractx.Order{
		ID:       "FD987654321",
		Status:   contractx.OrderOutForDelivery,
		PlacedAt: now.Add(-time.Hour),
		Amount:   42,
	}
	d := e.Evaluate(inTransit, "wrong item", now)
	if d.Eligible || d.Rationale != contractx.RationaleNotDelivered {
		t.Fatalf("undelivered order: expected not_delivered, got %+v", d)
	}

	d = e.Evaluate(nil, "wrong item", now)
	if d.Eligible || d.Rationale != contractx.RationaleNotDelivered {
		t.Fatalf("missing order: expected not_delivered, got %+v", d)
	}
}

func TestEvaluateCancelledOrderStaysRefundable(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cancelled := &contractx.Order{
		ID:       "FD222333444",
		Status:   contractx.OrderCancelled,
		PlacedAt: now.Add(-time.Hour),
		Amount:   19.90,
	}
	d := e.Evaluate(cancelled, "item was missing from the bag", now)
	if !d.Eligible {
		t.Fatalf("cancelled order with strong reason should refund, got %+v", d)
	}
	if d.Amount != 19.90 {
		t.Fatalf("expected 19.90, got %f", d.Amount)
	}
}

func TestEvaluateUnclassifiedEscalates(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	d := e.Evaluate(deliveredOrder(20, time.Hour, now), "just give me my money back", now)
	if !d.RequiresEscalation {
		t.Fatalf("unclassifiable reason must escalate, got %+v", d)
	}
	if d.Rationale != contractx.RationaleUnclassified {
		t.Fatalf("expected unclassified, got %s", d.Rationale)
	}
}

func TestEvaluateIsPure(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	order := deliveredOrder(33.33, 3*time.Hour, now)

	first := e.Evaluate(order, "the pizza was cold", now)
	for i := 0; i < 5; i++ {
		again := e.Evaluate(order, "the pizza was cold", now)
		if again != first {
			t.Fatalf("run %d: decision changed: %+v vs %+v", i, again, first)
		}
	}
}

func TestClassifyReasonPrecedence(t *testing.T) {
	t.Parallel()

	e := NewEvaluator(Config{})

	// "sick" outranks "cold": health/safety is checked before late delivery.
	if cat := e.ClassifyReason("the food was cold and it made me sick"); cat != CategoryHealthSafety {
		t.Fatalf("expected health_safety, got %s", cat)
	}
	if cat := e.ClassifyReason(""); cat != CategoryUnknown {
		t.Fatalf("expected unknown for empty reason, got %s", cat)
	}
	if cat := e.ClassifyReason("the burger was RAW inside"); cat != CategoryUnsafeFood {
		t.Fatalf("expected unsafe_food, got %s", cat)
	}
}
