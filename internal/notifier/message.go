// Package notifier groups new orders per client, renders their messages and
// drives the rate-limited concurrent dispatch to the messaging gateway.
package notifier

import (
	"fmt"
	"strconv"
	"strings"

	"cargotrack_backend/internal/orders/domain"
)

// MessageBuilder renders per-client notification texts in a fixed locale.
type MessageBuilder struct {
	t templates
}

// NewMessageBuilder creates a builder for the given locale ("ru", "ky").
func NewMessageBuilder(locale string) *MessageBuilder {
	return &MessageBuilder{t: templatesFor(locale)}
}

// Build renders the message for one client: a single-order text when the set
// holds exactly one order, otherwise a consolidated listing with aggregate
// weight and price. Aggregates sum only known values; when every value is
// unknown the localized "not specified" placeholder is rendered, never "0".
func (m *MessageBuilder) Build(set *domain.ClientOrderSet) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(m.t.greeting, set.Client.FullName))
	b.WriteString("\n")

	orders := set.OrdersInOrder()
	if len(orders) == 1 {
		order := orders[0]
		b.WriteString(fmt.Sprintf(m.t.singleArrived, order.TrackingNumber))
		b.WriteString("\n")
		if order.Status != "" {
			b.WriteString(fmt.Sprintf(m.t.statusLine, order.Status))
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf(m.t.weightLine, m.amount(order.Weight)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(m.t.priceLine, m.amount(order.Price)))
	} else {
		b.WriteString(fmt.Sprintf(m.t.multiArrived, len(orders)))
		b.WriteString("\n")
		for i, order := range orders {
			b.WriteString(fmt.Sprintf(m.t.orderLine, i+1, order.TrackingNumber))
			b.WriteString("\n")
		}
		weight, weightKnown := set.SumWeight()
		price, priceKnown := set.SumPrice()
		b.WriteString(fmt.Sprintf(m.t.weightLine, m.total(weight, weightKnown)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(m.t.priceLine, m.total(price, priceKnown)))
	}

	if set.Client.PickupPoint != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(m.t.pickupLine, set.Client.PickupPoint))
	}

	return b.String()
}

func (m *MessageBuilder) amount(value *float64) string {
	if value == nil {
		return m.t.notSpecified
	}
	return formatNumber(*value)
}

func (m *MessageBuilder) total(value float64, known bool) string {
	if !known {
		return m.t.notSpecified
	}
	return formatNumber(value)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
