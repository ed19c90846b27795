package order

import (
	"context"

	contractx "github.com/kritsadas/Feastly-Hybrid-Support-Agent/agent/contract"
)

// MemorySource serves a fixed set of orders from process memory. Used in
// tests and for demo runs without a database.
type MemorySource struct {
	orders map[string]contractx.Order
}

func NewMemorySource(orders []contractx.Order) *MemorySource {
	byID := make(map[string]contractx.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return &MemorySource{orders: byID}
}

func (s *MemorySource) FetchOrder(_ context.Context, orderID string) (*contractx.Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, contractx.ErrOrderNotFound
	}
	copied := o
	return &copied, nil
}
