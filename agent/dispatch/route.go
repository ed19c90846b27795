package dispatch

import (
	"strings"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	orderx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/order"
	statex "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/state"
)

type Config struct {
	// ConfidenceFloor below which a classification is never trusted.
	ConfidenceFloor float64 `envconfig:"CONFIDENCE_FLOOR" split_words:"true" default:"0.45"`
	// ComplaintThreshold forces escalation after this many consecutive
	// complaints in one session.
	ComplaintThreshold int `envconfig:"COMPLAINT_THRESHOLD" split_words:"true" default:"3"`
	// EscalationKeywords force escalation regardless of classified intent.
	EscalationKeywords []string `envconfig:"ESCALATION_KEYWORDS" split_words:"true" default:"manager,supervisor,sick,emergency,escalate,urgent,lawyer"`
}

func (c Config) withDefaults() Config {
	if c.ConfidenceFloor <= 0 {
		c.ConfidenceFloor = 0.45
	}
	if c.ComplaintThreshold <= 0 {
		c.ComplaintThreshold = 3
	}
	if len(c.EscalationKeywords) == 0 {
		c.EscalationKeywords = []string{"manager", "supervisor", "sick", "emergency", "escalate", "urgent", "lawyer"}
	}
	return c
}

// decideRoute is the routing state machine's single transition out of
// Routing. It is pure: every (classification, text, session) input maps to
// exactly one route.
//
// Escalation keywords are checked against the raw message before anything
// else, so a configured keyword reaches Escalated regardless of what the
// classifier said.
func decideRoute(
	cls contractx.Classification,
	classifierOK bool,
	text string,
	session *statex.SessionState,
	cfg Config,
) contractx.DispatchDecision {
	if trigger, hit := matchEscalationKeyword(text, cfg.EscalationKeywords); hit {
		return contractx.DispatchDecision{
			Route:   contractx.RouteEscalate,
			Query:   text,
			Trigger: trigger,
		}
	}

	if !classifierOK {
		return contractx.DispatchDecision{
			Route:   contractx.RouteEscalate,
			Query:   text,
			Trigger: contractx.TriggerClassifierFailed,
		}
	}

	if session != nil && session.ComplaintCount >= cfg.ComplaintThreshold {
		return contractx.DispatchDecision{
			Route:   contractx.RouteEscalate,
			Query:   text,
			Trigger: contractx.TriggerRepeatedFailure,
		}
	}

	if cls.Confidence < cfg.ConfidenceFloor {
		return contractx.DispatchDecision{
			Route:   contractx.RouteEscalate,
			Query:   text,
			Trigger: contractx.TriggerLowConfidence,
		}
	}

	switch cls.Intent {
	case contractx.IntentTrackOrder:
		orderID := resolveOrderID(cls, session)
		if orderID == "" {
			return contractx.DispatchDecision{
				Route:   contractx.RouteEscalate,
				Query:   text,
				Trigger: contractx.TriggerMissingEntities,
			}
		}
		// Malformed ids still enter the branch: the accessor rejects them
		// and the user gets format guidance rather than a human handoff.
		return contractx.DispatchDecision{
			Route:   contractx.RouteTrackOrder,
			OrderID: orderID,
		}

	case contractx.IntentRefund:
		orderID := resolveOrderID(cls, session)
		if orderID == "" {
			return contractx.DispatchDecision{
				Route:   contractx.RouteEscalate,
				Query:   text,
				Trigger: contractx.TriggerMissingEntities,
			}
		}
		reason := strings.TrimSpace(cls.Entities[contractx.EntityReason])
		if reason == "" {
			reason = text
		}
		return contractx.DispatchDecision{
			Route:      contractx.RouteRefund,
			OrderID:    orderID,
			ReasonText: reason,
		}

	case contractx.IntentFAQ, contractx.IntentGeneral:
		query := strings.TrimSpace(cls.Entities[contractx.EntityQuery])
		if query == "" {
			query = text
		}
		return contractx.DispatchDecision{
			Route: contractx.RouteFAQ,
			Query: query,
		}

	default:
		return contractx.DispatchDecision{
			Route:   contractx.RouteEscalate,
			Query:   text,
			Trigger: contractx.TriggerLowConfidence,
		}
	}
}

// resolveOrderID prefers the classifier's entity but recalls the session's
// last order id when the customer says "my order" without repeating it.
func resolveOrderID(cls contractx.Classification, session *statex.SessionState) string {
	if id := strings.TrimSpace(cls.Entities[contractx.EntityOrderID]); id != "" {
		return id
	}
	if session != nil && orderx.ValidOrderID(session.LastOrderID) {
		return session.LastOrderID
	}
	return ""
}

func matchEscalationKeyword(text string, keywords []string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, kw) {
			return contractx.TriggerKeyword, true
		}
	}
	return "", false
}
