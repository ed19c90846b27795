package dispatch

import (
	"fmt"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	respondx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/respond"
)

// fallbackReply renders an envelope without the language model. Used when no
// phraser is configured or phrasing fails; the wording is fixed and every
// fact comes straight from the envelope.
func fallbackReply(env contractx.Envelope) string {
	switch payload := env.Payload.(type) {
	case respondx.OrderStatusPayload:
		if !payload.Found {
			return fmt.Sprintf("We could not find order %s. Please check the order id and try again.", payload.OrderID)
		}
		return fmt.Sprintf("Order %s is currently %s.", payload.Order.ID, payload.Order.Status)

	case respondx.RefundPayload:
		d := payload.Decision
		switch {
		case d.RequiresEscalation:
			return fmt.Sprintf("Your refund request for order %s needs review by a support agent, who will contact you shortly.", payload.OrderID)
		case d.Eligible:
			return fmt.Sprintf("A refund of %.2f for order %s has been approved and will reach your original payment method in 3-5 business days.", d.Amount, payload.OrderID)
		default:
			return fmt.Sprintf("Order %s is not eligible for a refund (%s).", payload.OrderID, d.Rationale)
		}

	case respondx.FAQPayload:
		top := payload.Results[0].Entry
		return fmt.Sprintf("%s\n\n%s", top.Question, top.Answer)

	case respondx.EscalationPayload:
		if payload.TicketID != "" {
			return fmt.Sprintf("Your issue has been escalated to our support team (ticket %s). An agent will contact you shortly.", payload.TicketID)
		}
		return "We could not find an answer to your question. A support agent will contact you shortly."

	case respondx.GuidancePayload:
		return payload.Guidance

	case respondx.DegradedPayload:
		return "We are having trouble processing requests right now. A support agent will follow up with you shortly."

	default:
		return "A support agent will contact you shortly."
	}
}
