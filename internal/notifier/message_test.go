package notifier

import (
	"strings"
	"testing"

	"cargotrack_backend/internal/orders/domain"
)

func floatPtr(v float64) *float64 { return &v }

func newSet(orders ...domain.Order) *domain.ClientOrderSet {
	set := domain.NewClientOrderSet(domain.ClientRecord{
		Code:        "A77",
		FullName:    "Айгуль Бекова",
		PhoneNumber: "700100518",
		PickupPoint: "Бишкек, Мадина",
	})
	for _, order := range orders {
		set.Add(order)
	}
	return set
}

func TestBuild_SingleOrder(t *testing.T) {
	builder := NewMessageBuilder("ru")
	set := newSet(domain.Order{TrackingNumber: "TRK-100", Status: "Прибыл", Weight: floatPtr(2.5), Price: floatPtr(1200)})

	msg := builder.Build(set)

	for _, want := range []string{"Айгуль Бекова", "TRK-100", "2.5", "1200", "Бишкек, Мадина"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuild_MultiOrderSumsKnownValues(t *testing.T) {
	builder := NewMessageBuilder("ru")
	set := newSet(
		domain.Order{TrackingNumber: "TRK-1", Weight: floatPtr(2.5), Price: floatPtr(500)},
		domain.Order{TrackingNumber: "TRK-2", Weight: nil, Price: floatPtr(300)},
		domain.Order{TrackingNumber: "TRK-3", Weight: floatPtr(1.0), Price: nil},
	)

	msg := builder.Build(set)

	if !strings.Contains(msg, "TRK-1") || !strings.Contains(msg, "TRK-2") || !strings.Contains(msg, "TRK-3") {
		t.Fatalf("message missing tracking numbers:\n%s", msg)
	}
	// nil weights are unknown, not zero: 2.5 + 1.0 = 3.5
	if !strings.Contains(msg, "3.5") {
		t.Fatalf("expected summed weight 3.5:\n%s", msg)
	}
	if !strings.Contains(msg, "800") {
		t.Fatalf("expected summed price 800:\n%s", msg)
	}
	if strings.Contains(msg, "не указано") {
		t.Fatalf("placeholder must not appear when some values are known:\n%s", msg)
	}
}

func TestBuild_AllUnknownRendersPlaceholder(t *testing.T) {
	builder := NewMessageBuilder("ru")
	set := newSet(
		domain.Order{TrackingNumber: "TRK-1"},
		domain.Order{TrackingNumber: "TRK-2"},
	)

	msg := builder.Build(set)

	if !strings.Contains(msg, "не указано") {
		t.Fatalf("expected localized placeholder for all-unknown aggregates:\n%s", msg)
	}
	if strings.Contains(msg, "Вес: 0") {
		t.Fatalf("all-unknown weight must not render as zero:\n%s", msg)
	}
}

func TestBuild_KyrgyzLocale(t *testing.T) {
	builder := NewMessageBuilder("ky")
	set := newSet(domain.Order{TrackingNumber: "TRK-1"})

	msg := builder.Build(set)

	if !strings.Contains(msg, "Саламатсызбы") {
		t.Fatalf("expected Kyrgyz greeting:\n%s", msg)
	}
	if !strings.Contains(msg, "көрсөтүлгөн эмес") {
		t.Fatalf("expected Kyrgyz placeholder:\n%s", msg)
	}
}

func TestBuild_UnknownLocaleFallsBackToRussian(t *testing.T) {
	builder := NewMessageBuilder("de")
	set := newSet(domain.Order{TrackingNumber: "TRK-1"})

	if msg := builder.Build(set); !strings.Contains(msg, "Здравствуйте") {
		t.Fatalf("expected Russian fallback:\n%s", msg)
	}
}
