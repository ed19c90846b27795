package state

import (
	"strings"
	"time"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

// SessionState is the per-session support context. It is mutated only inside
// a single dispatch; messages from one session must be processed in arrival
// order by the caller, while independent sessions may run concurrently.
type SessionState struct {
	SessionID  string `json:"session_id"`
	CustomerID string `json:"customer_id,omitempty"`

	// Last-known entities recalled when the classifier omits them.
	LastOrderID string              `json:"last_order_id,omitempty"`
	LastIntent  contractx.IntentTag `json:"last_intent,omitempty"`

	// ComplaintCount tracks repeated complaints within the session; crossing
	// the configured threshold forces escalation.
	ComplaintCount int `json:"complaint_count,omitempty"`

	Turns     int       `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID, customerID string, now time.Time) *SessionState {
	return &SessionState{
		SessionID:  sessionID,
		CustomerID: customerID,
		UpdatedAt:  now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// RecordTurn updates the session context after a dispatch completed.
func (s *SessionState) RecordTurn(intent contractx.IntentTag, orderID string, complaint bool, now time.Time) {
	if s == nil {
		return
	}
	s.Turns++
	if intent != "" && intent != contractx.IntentUnknown {
		s.LastIntent = intent
	}
	if strings.TrimSpace(orderID) != "" {
		s.LastOrderID = strings.TrimSpace(orderID)
	}
	if complaint {
		s.ComplaintCount++
	} else {
		s.ComplaintCount = 0
	}
	s.Touch(now)
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	return nil
}
