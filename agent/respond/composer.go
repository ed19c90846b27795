// Package respond assembles the response envelope handed to the external
// language model for phrasing. Factual fields are computed by deterministic
// code; nothing in this package generates prose.
package respond

import (
	"fmt"
	"time"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

type OrderStatusPayload struct {
	OrderID string           `json:"order_id"`
	Found   bool             `json:"found"`
	Order   *contractx.Order `json:"order,omitempty"`
}

type RefundPayload struct {
	OrderID  string                   `json:"order_id"`
	Reason   string                   `json:"reason"`
	Decision contractx.RefundDecision `json:"decision"`
}

type FAQPayload struct {
	Query   string                    `json:"query"`
	Results contractx.RetrievalResult `json:"results"`
}

type EscalationPayload struct {
	TicketID string `json:"ticket_id"`
	Trigger  string `json:"trigger"`
	Issue    string `json:"issue"`
}

type GuidancePayload struct {
	OrderID  string `json:"order_id"`
	Guidance string `json:"guidance"`
}

type DegradedPayload struct {
	Reason string `json:"reason"`
}

func ComposeTracking(orderID string, o *contractx.Order) contractx.Envelope {
	return contractx.Envelope{
		Kind: contractx.KindOrderStatus,
		Payload: OrderStatusPayload{
			OrderID: orderID,
			Found:   o != nil,
			Order:   o,
		},
	}
}

func ComposeRefund(orderID, reason string, decision contractx.RefundDecision) contractx.Envelope {
	return contractx.Envelope{
		Kind: contractx.KindRefundDecision,
		Payload: RefundPayload{
			OrderID:  orderID,
			Reason:   reason,
			Decision: decision,
		},
		NeedsHuman: decision.RequiresEscalation,
	}
}

// ComposeFAQ falls back to an escalation envelope when retrieval found
// nothing above the threshold; the engine never fabricates an answer.
func ComposeFAQ(query string, results contractx.RetrievalResult) contractx.Envelope {
	if len(results) == 0 {
		return contractx.Envelope{
			Kind: contractx.KindEscalation,
			Payload: EscalationPayload{
				Trigger: "no_faq_match",
				Issue:   query,
			},
			NeedsHuman: true,
		}
	}
	return contractx.Envelope{
		Kind: contractx.KindFAQAnswer,
		Payload: FAQPayload{
			Query:   query,
			Results: results,
		},
	}
}

func ComposeEscalation(trigger, issue string, now time.Time) contractx.Envelope {
	return contractx.Envelope{
		Kind: contractx.KindEscalation,
		Payload: EscalationPayload{
			TicketID: NewTicketID(now),
			Trigger:  trigger,
			Issue:    issue,
		},
		NeedsHuman: true,
	}
}

func ComposeGuidance(orderID string) contractx.Envelope {
	return contractx.Envelope{
		Kind: contractx.KindGuidance,
		Payload: GuidancePayload{
			OrderID:  orderID,
			Guidance: "Order ids start with FD followed by nine digits, e.g. FD123456789.",
		},
	}
}

func ComposeDegraded(reason string) contractx.Envelope {
	return contractx.Envelope{
		Kind:       contractx.KindDegraded,
		Payload:    DegradedPayload{Reason: reason},
		NeedsHuman: true,
	}
}

// NewTicketID derives a support ticket id from the request time.
func NewTicketID(now time.Time) string {
	return fmt.Sprintf("TICKET-%06d", now.UnixNano()%1_000_000)
}
