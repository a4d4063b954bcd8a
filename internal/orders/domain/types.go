// Package domain holds the pipeline's core types. Everything here is
// run-local: nothing in this package is persisted directly.
package domain

import "sort"

// ClientRecord is one entry of the client directory, joined to order rows by
// code. Built fresh per run, never persisted.
type ClientRecord struct {
	Code        string
	FullName    string
	PhoneNumber string
	PickupPoint string
}

// Order is a single extracted order row. TrackingNumber is the natural key.
// Weight and Price are nil when absent or unparseable; nil means unknown,
// never zero.
type Order struct {
	TrackingNumber string
	Status         string
	Weight         *float64
	Price          *float64
}

// ClientOrderSet groups all orders of one client within one run. Keys are
// run-local sequential ids starting at 1; they exist only for grouping and
// are not durable identifiers.
type ClientOrderSet struct {
	Client ClientRecord
	Orders map[int]Order
}

// NewClientOrderSet creates an empty set for the given client.
func NewClientOrderSet(client ClientRecord) *ClientOrderSet {
	return &ClientOrderSet{
		Client: client,
		Orders: make(map[int]Order),
	}
}

// Add inserts an order under the next sequential id (max existing + 1).
func (s *ClientOrderSet) Add(order Order) {
	next := 1
	for id := range s.Orders {
		if id >= next {
			next = id + 1
		}
	}
	s.Orders[next] = order
}

// OrderIDs returns the set's ids in ascending order.
func (s *ClientOrderSet) OrderIDs() []int {
	ids := make([]int, 0, len(s.Orders))
	for id := range s.Orders {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// OrdersInOrder returns the orders sorted by their sequential id.
func (s *ClientOrderSet) OrdersInOrder() []Order {
	ids := s.OrderIDs()
	orders := make([]Order, 0, len(ids))
	for _, id := range ids {
		orders = append(orders, s.Orders[id])
	}
	return orders
}

// TrackingNumbers returns the tracking numbers sorted by sequential id.
func (s *ClientOrderSet) TrackingNumbers() []string {
	orders := s.OrdersInOrder()
	numbers := make([]string, 0, len(orders))
	for _, order := range orders {
		numbers = append(numbers, order.TrackingNumber)
	}
	return numbers
}

// SumWeight sums the known weights. known is false only when every weight is
// nil; callers must render a placeholder in that case rather than zero.
func (s *ClientOrderSet) SumWeight() (total float64, known bool) {
	for _, order := range s.Orders {
		if order.Weight != nil {
			total += *order.Weight
			known = true
		}
	}
	return total, known
}

// SumPrice sums the known prices; known is false only when every price is nil.
func (s *ClientOrderSet) SumPrice() (total float64, known bool) {
	for _, order := range s.Orders {
		if order.Price != nil {
			total += *order.Price
			known = true
		}
	}
	return total, known
}

// PartitionStats summarizes one dedup pass.
type PartitionStats struct {
	NewCount         int
	AlreadySentCount int
}
