package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
	respondx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/respond"
	statex "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply    string
	Envelope contractx.Envelope
	Route    contractx.Route
}

// GraphState threads one message through the dispatch pipeline. A fresh
// instance is created per message; the dispatcher shares nothing mutable
// across concurrent invocations.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session        *statex.SessionState
	Classification contractx.Classification
	ClassifierOK   bool

	Decision contractx.DispatchDecision
	Envelope contractx.Envelope
	Reply    string
}

func (d *Dispatcher) validateRequest(in GraphInput) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}
	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       d.now().UTC(),
	}, nil
}

func (d *Dispatcher) loadOrCreateSession(ctx context.Context, in *GraphState) (*GraphState, error) {
	st, err := d.store.Load(ctx, in.SessionID)
	if err == nil {
		in.Session = st
		return in, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		// A broken session store degrades the session memory, not the
		// request.
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("session load failed, starting fresh")
	}
	in.Session = statex.NewSessionState(in.SessionID, "", in.Now)
	return in, nil
}

func (d *Dispatcher) classifyMessage(ctx context.Context, in *GraphState) (*GraphState, error) {
	history := []string{}
	if in.Session != nil && in.Session.LastIntent != "" {
		history = append(history, "last_intent="+string(in.Session.LastIntent))
	}
	if in.Session != nil && in.Session.LastOrderID != "" {
		history = append(history, "last_order_id="+in.Session.LastOrderID)
	}

	cls, err := d.classifier.Classify(ctx, in.Text, history)
	if err != nil {
		// Classifier failure routes to escalation, never past the
		// dispatcher.
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("classification failed")
		in.ClassifierOK = false
		return in, nil
	}
	in.Classification = cls
	in.ClassifierOK = true
	return in, nil
}

func (d *Dispatcher) routeMessage(in *GraphState) (*GraphState, error) {
	in.Decision = decideRoute(in.Classification, in.ClassifierOK, in.Text, in.Session, d.cfg)
	log.Debug().
		Str("session_id", in.SessionID).
		Str("route", string(in.Decision.Route)).
		Str("trigger", in.Decision.Trigger).
		Msg("message routed")
	return in, nil
}

// runBranch executes the chosen branch and converts every branch-local
// error into a response envelope. No fault propagates past this node.
func (d *Dispatcher) runBranch(ctx context.Context, in *GraphState) (*GraphState, error) {
	switch in.Decision.Route {
	case contractx.RouteTrackOrder:
		in.Envelope = d.runTracking(ctx, in)
	case contractx.RouteRefund:
		in.Envelope = d.runRefund(ctx, in)
	case contractx.RouteFAQ:
		in.Envelope = d.runRetrieval(ctx, in)
	case contractx.RouteEscalate:
		in.Envelope = respondx.ComposeEscalation(in.Decision.Trigger, in.Text, in.Now)
	default:
		in.Envelope = respondx.ComposeEscalation(contractx.TriggerClassifierFailed, in.Text, in.Now)
	}
	return in, nil
}

func (d *Dispatcher) runTracking(ctx context.Context, in *GraphState) contractx.Envelope {
	o, err := d.orders.Lookup(ctx, in.Decision.OrderID)
	switch {
	case err == nil:
		return respondx.ComposeTracking(in.Decision.OrderID, o)
	case errors.Is(err, contractx.ErrMalformedOrderID):
		return respondx.ComposeGuidance(in.Decision.OrderID)
	case errors.Is(err, contractx.ErrOrderNotFound):
		// Negative result, not an error.
		return respondx.ComposeTracking(in.Decision.OrderID, nil)
	default:
		log.Error().Err(err).Str("order_id", in.Decision.OrderID).Msg("order lookup failed")
		return respondx.ComposeDegraded("order source unavailable")
	}
}

func (d *Dispatcher) runRefund(ctx context.Context, in *GraphState) contractx.Envelope {
	o, err := d.orders.Lookup(ctx, in.Decision.OrderID)
	switch {
	case err == nil:
		// keep order
	case errors.Is(err, contractx.ErrMalformedOrderID):
		return respondx.ComposeGuidance(in.Decision.OrderID)
	case errors.Is(err, contractx.ErrOrderNotFound):
		o = nil // rule 1: not found is evaluated as not delivered
	default:
		log.Error().Err(err).Str("order_id", in.Decision.OrderID).Msg("order lookup failed")
		return respondx.ComposeDegraded("order source unavailable")
	}

	decision := d.refunds.Evaluate(o, in.Decision.ReasonText, in.Now)
	return respondx.ComposeRefund(in.Decision.OrderID, in.Decision.ReasonText, decision)
}

func (d *Dispatcher) runRetrieval(ctx context.Context, in *GraphState) contractx.Envelope {
	results, err := d.retriever.Retrieve(ctx, in.Decision.Query)
	if err != nil {
		log.Error().Err(err).Str("session_id", in.SessionID).Msg("faq retrieval failed")
		return respondx.ComposeDegraded("faq search unavailable")
	}
	return respondx.ComposeFAQ(in.Decision.Query, results)
}

func (d *Dispatcher) saveSession(ctx context.Context, in *GraphState) (*GraphState, error) {
	complaint := in.Decision.Route == contractx.RouteRefund ||
		(in.Decision.Route == contractx.RouteEscalate && in.Decision.Trigger == contractx.TriggerKeyword)

	in.Session.RecordTurn(in.Classification.Intent, in.Decision.OrderID, complaint, in.Now)

	if err := d.store.Save(ctx, in.Session); err != nil {
		// The reply is already computed; losing one turn of session memory
		// beats failing the request.
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("session save failed")
	}
	return in, nil
}

func (d *Dispatcher) phraseReply(ctx context.Context, in *GraphState) (GraphOutput, error) {
	reply := fallbackReply(in.Envelope)
	if d.phraser != nil {
		phrased, err := d.phraser.Phrase(ctx, in.Text, in.Envelope)
		if err != nil {
			log.Warn().Err(err).Str("session_id", in.SessionID).Msg("phrasing failed, using fallback")
			in.Envelope.NeedsHuman = true
		} else {
			reply = phrased
		}
	}

	return GraphOutput{
		Reply:    reply,
		Envelope: in.Envelope,
		Route:    in.Decision.Route,
	}, nil
}
