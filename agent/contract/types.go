package contract

import "time"

type IntentTag string

const (
	IntentTrackOrder IntentTag = "track_order"
	IntentRefund     IntentTag = "refund"
	IntentFAQ        IntentTag = "faq"
	IntentGeneral    IntentTag = "general"
	IntentUnknown    IntentTag = "unknown"
)

// Classification is the fixed-shape contract with the external intent
// classifier. It is treated as untrusted and validated before routing.
type Classification struct {
	Intent     IntentTag         `json:"intent_tag"`
	Entities   map[string]string `json:"entities,omitempty"`
	Confidence float64           `json:"confidence"`
}

// Entity keys the classifier is expected to fill.
const (
	EntityOrderID = "order_id"
	EntityReason  = "reason"
	EntityQuery   = "query"
)

type Route string

const (
	RouteTrackOrder Route = "track_order"
	RouteRefund     Route = "refund"
	RouteFAQ        Route = "faq"
	RouteEscalate   Route = "escalate"
)

// DispatchDecision carries exactly one route per message plus the entities
// that branch needs.
type DispatchDecision struct {
	Route      Route  `json:"route"`
	OrderID    string `json:"order_id,omitempty"`
	ReasonText string `json:"reason_text,omitempty"`
	Query      string `json:"query,omitempty"`
	Trigger    string `json:"trigger,omitempty"` // why Escalate was chosen
}

// Escalation triggers recorded on DispatchDecision.
const (
	TriggerKeyword          = "keyword"
	TriggerLowConfidence    = "low_confidence"
	TriggerMissingEntities  = "missing_entities"
	TriggerRepeatedFailure  = "repeated_failure"
	TriggerClassifierFailed = "classifier_failed"
	TriggerSensitiveReason  = "sensitive_reason"
)

type OrderStatus string

const (
	OrderPlaced         OrderStatus = "placed"
	OrderPreparing      OrderStatus = "preparing"
	OrderOutForDelivery OrderStatus = "out_for_delivery"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

// Order is read-only to this core; it is created and mutated by the external
// order system.
type Order struct {
	ID           string      `json:"order_id"`
	Status       OrderStatus `json:"status"`
	PlacedAt     time.Time   `json:"placed_at"`
	DeliveredAt  *time.Time  `json:"delivered_at,omitempty"`
	Amount       float64     `json:"amount"`
	RestaurantID string      `json:"restaurant_id"`
}

type RefundRequest struct {
	OrderID     string    `json:"order_id"`
	ReasonText  string    `json:"reason_text"`
	ReasonCode  string    `json:"reason_code,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

type RationaleCode string

const (
	RationaleNotDelivered   RationaleCode = "not_delivered"
	RationaleWindowExpired  RationaleCode = "window_expired"
	RationaleStrongCategory RationaleCode = "strong_category"
	RationalePolicyExcluded RationaleCode = "policy_excluded"
	RationaleHealthSafety   RationaleCode = "health_safety"
	RationaleUnclassified   RationaleCode = "unclassified"
)

// RefundDecision is immutable once returned.
type RefundDecision struct {
	Eligible           bool          `json:"eligible"`
	Amount             float64       `json:"amount"`
	Rationale          RationaleCode `json:"rationale"`
	RequiresEscalation bool          `json:"requires_escalation"`
}

type FAQEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Embedding []float32 `json:"-"`
}

type ScoredEntry struct {
	Entry FAQEntry `json:"entry"`
	Score float32  `json:"score"`
}

// RetrievalResult is ordered best-first, length <= k, possibly empty.
type RetrievalResult []ScoredEntry

type EnvelopeKind string

const (
	KindOrderStatus    EnvelopeKind = "order_status"
	KindRefundDecision EnvelopeKind = "refund_decision"
	KindFAQAnswer      EnvelopeKind = "faq_answer"
	KindEscalation     EnvelopeKind = "escalation"
	KindGuidance       EnvelopeKind = "guidance"
	KindDegraded       EnvelopeKind = "degraded"
)

// Envelope is the structured result handed to the external language model
// for phrasing. Factual fields are computed here, never by the model.
type Envelope struct {
	Kind       EnvelopeKind `json:"kind"`
	Payload    any          `json:"payload,omitempty"`
	NeedsHuman bool         `json:"needs_human"`
}
