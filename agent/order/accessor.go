// Package order provides read-only access to order records.
package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

// Order ids are "FD" followed by nine digits, e.g. FD123456789.
var orderIDPattern = regexp.MustCompile(`^FD[0-9]{9}$`)

// ValidOrderID reports whether id matches the fixed order-id format.
func ValidOrderID(id string) bool {
	return orderIDPattern.MatchString(strings.TrimSpace(id))
}

// Accessor validates order ids and fetches records from the external order
// source. It never mutates order state.
type Accessor struct {
	source contractx.OrderSource
}

func NewAccessor(source contractx.OrderSource) (*Accessor, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: order source is required", contractx.ErrValidation)
	}
	return &Accessor{source: source}, nil
}

// Lookup fails fast with ErrMalformedOrderID before touching the source, so
// callers can give format guidance instead of a not-found message. A source
// miss is ErrOrderNotFound; any other source failure wraps ErrCollaborator.
func (a *Accessor) Lookup(ctx context.Context, orderID string) (*contractx.Order, error) {
	trimmed := strings.TrimSpace(orderID)
	if !ValidOrderID(trimmed) {
		return nil, fmt.Errorf("%w: %q", contractx.ErrMalformedOrderID, orderID)
	}

	o, err := a.source.FetchOrder(ctx, trimmed)
	if err != nil {
		if errors.Is(err, contractx.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: order source: %v", contractx.ErrCollaborator, err)
	}
	if o == nil {
		return nil, contractx.ErrOrderNotFound
	}
	return o, nil
}
