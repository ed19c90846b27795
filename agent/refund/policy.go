// Package refund computes refund eligibility from order state and the
// customer's stated reason. The evaluator is pure: no I/O, identical inputs
// always yield identical decisions, which makes retries safe.
package refund

import (
	"strings"
	"time"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

type Category string

const (
	CategoryWrongItem    Category = "wrong_item"
	CategoryMissingItem  Category = "missing_item"
	CategoryUnsafeFood   Category = "unsafe_food"
	CategoryLateDelivery Category = "late_delivery"
	CategoryHealthSafety Category = "health_safety"
	CategoryTaste        Category = "taste"
	CategoryMinor        Category = "minor"
	CategoryUnknown      Category = "unknown"
)

type Config struct {
	GraceWindow time.Duration `envconfig:"GRACE_WINDOW" split_words:"true" default:"24h"`
}

// DefaultKeywords maps reason categories to lowercase substrings. The lists
// are policy configuration, not specified behavior; operators tune them.
func DefaultKeywords() map[Category][]string {
	return map[Category][]string{
		CategoryHealthSafety: {"sick", "food poisoning", "poisoning", "allergic", "hospital", "unwell", "threw up"},
		CategoryUnsafeFood:   {"spoiled", "raw", "undercooked", "expired", "unsafe", "moldy", "rotten"},
		CategoryWrongItem:    {"wrong", "incorrect", "different item", "not what i ordered"},
		CategoryMissingItem:  {"missing", "forgot", "not included", "left out"},
		CategoryLateDelivery: {"late", "cold", "took too long", "hours"},
		CategoryTaste:        {"taste", "didn't like", "not tasty", "bland", "flavor", "flavour"},
		CategoryMinor:        {"portion", "too small", "presentation", "packaging"},
	}
}

// DefaultTiers maps categories to refund fractions of the order amount.
func DefaultTiers() map[Category]float64 {
	return map[Category]float64{
		CategoryWrongItem:    1.0,
		CategoryMissingItem:  1.0,
		CategoryUnsafeFood:   1.0,
		CategoryLateDelivery: 1.0,
	}
}

// matchOrder fixes keyword lookup precedence: escalating and strong
// categories are checked before weak ones.
var matchOrder = []Category{
	CategoryHealthSafety,
	CategoryUnsafeFood,
	CategoryWrongItem,
	CategoryMissingItem,
	CategoryLateDelivery,
	CategoryTaste,
	CategoryMinor,
}

var strongCategories = map[Category]bool{
	CategoryWrongItem:    true,
	CategoryMissingItem:  true,
	CategoryUnsafeFood:   true,
	CategoryLateDelivery: true,
}

var weakCategories = map[Category]bool{
	CategoryTaste: true,
	CategoryMinor: true,
}

type Evaluator struct {
	graceWindow time.Duration
	keywords    map[Category][]string
	tiers       map[Category]float64
}

type Option func(*Evaluator)

func WithKeywords(keywords map[Category][]string) Option {
	return func(e *Evaluator) {
		if len(keywords) > 0 {
			e.keywords = keywords
		}
	}
}

func WithTiers(tiers map[Category]float64) Option {
	return func(e *Evaluator) {
		if len(tiers) > 0 {
			e.tiers = tiers
		}
	}
}

func NewEvaluator(cfg Config, opts ...Option) *Evaluator {
	graceWindow := cfg.GraceWindow
	if graceWindow <= 0 {
		graceWindow = 24 * time.Hour
	}
	e := &Evaluator{
		graceWindow: graceWindow,
		keywords:    DefaultKeywords(),
		tiers:       DefaultTiers(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// ClassifyReason maps free-form reason text to a policy category.
func (e *Evaluator) ClassifyReason(reasonText string) Category {
	reason := strings.ToLower(strings.TrimSpace(reasonText))
	if reason == "" {
		return CategoryUnknown
	}
	for _, cat := range matchOrder {
		for _, kw := range e.keywords[cat] {
			if strings.Contains(reason, kw) {
				return cat
			}
		}
	}
	return CategoryUnknown
}

// Evaluate applies the refund rules in order, first match wins:
//  1. order missing or not delivered (and no delivery-failure signal) →
//     not eligible, not_delivered.
//  2. past the grace window → not eligible, window_expired; a health/safety
//     reason escalates instead, regardless of the window.
//  3. strong category → eligible, amount from the tier table.
//  4. weak category → not eligible, policy_excluded.
//  5. unclassifiable reason → escalate, eligibility undetermined.
func (e *Evaluator) Evaluate(order *contractx.Order, reasonText string, now time.Time) contractx.RefundDecision {
	category := e.ClassifyReason(reasonText)

	// Health/safety complaints always go to a human.
	if category == CategoryHealthSafety {
		return contractx.RefundDecision{
			Rationale:          contractx.RationaleHealthSafety,
			RequiresEscalation: true,
		}
	}

	if order == nil {
		return contractx.RefundDecision{Rationale: contractx.RationaleNotDelivered}
	}

	// A cancelled order counts as a delivery-failure signal and stays
	// refundable; anything else short of delivered does not.
	if order.Status != contractx.OrderDelivered && order.Status != contractx.OrderCancelled {
		return contractx.RefundDecision{Rationale: contractx.RationaleNotDelivered}
	}

	if order.Status == contractx.OrderDelivered && order.DeliveredAt != nil {
		if now.Sub(*order.DeliveredAt) > e.graceWindow {
			return contractx.RefundDecision{Rationale: contractx.RationaleWindowExpired}
		}
	}

	switch {
	case strongCategories[category]:
		tier, ok := e.tiers[category]
		if !ok {
			tier = 1.0
		}
		return contractx.RefundDecision{
			Eligible:  true,
			Amount:    order.Amount * tier,
			Rationale: contractx.RationaleStrongCategory,
		}
	case weakCategories[category]:
		return contractx.RefundDecision{Rationale: contractx.RationalePolicyExcluded}
	default:
		return contractx.RefundDecision{
			Rationale:          contractx.RationaleUnclassified,
			RequiresEscalation: true,
		}
	}
}
