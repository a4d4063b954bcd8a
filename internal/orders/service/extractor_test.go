package service

import (
	"testing"

	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/platform/logger"
)

func testClientMap() map[string]domain.ClientRecord {
	return map[string]domain.ClientRecord{
		"A77": {Code: "A77", FullName: "Айбек Т.", PhoneNumber: "996700100518", PickupPoint: "Бишкек, Мадина"},
		"B12": {Code: "B12", FullName: "Мария К.", PhoneNumber: "996555000111", PickupPoint: "Ош"},
	}
}

func TestExtractGroupsRowsByClient(t *testing.T) {
	rows := [][]string{
		{"Статус", "Дата", "Трек", "Код", "Вес", "Цена"},
		{"Прибыл", "2024-05-01", "TRK-1", "A77", "2,5", "800"},
		{"Прибыл", "2024-05-01", "TRK-2", "A77", "1.0", "300"},
		{"Прибыл", "2024-05-01", "TRK-3", "B12", "", ""},
	}

	sets, skipped := Extract("Май", rows, testClientMap(), logger.New("development"))
	if skipped != 0 {
		t.Fatalf("expected no skips, got %d", skipped)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 client sets, got %d", len(sets))
	}

	a77 := sets["A77"]
	if a77 == nil || len(a77.Orders) != 2 {
		t.Fatalf("expected 2 orders for A77, got %+v", a77)
	}
	first := a77.Orders[1]
	if first.TrackingNumber != "TRK-1" {
		t.Fatalf("expected TRK-1 under id 1, got %q", first.TrackingNumber)
	}
	if first.Weight == nil || *first.Weight != 2.5 {
		t.Fatalf("expected weight 2.5, got %v", first.Weight)
	}
	if first.Price == nil || *first.Price != 800 {
		t.Fatalf("expected price 800, got %v", first.Price)
	}

	b12 := sets["B12"]
	if b12 == nil || len(b12.Orders) != 1 {
		t.Fatalf("expected 1 order for B12, got %+v", b12)
	}
	if b12.Orders[1].Weight != nil || b12.Orders[1].Price != nil {
		t.Fatalf("expected unknown weight and price, got %+v", b12.Orders[1])
	}
}

func TestExtractSkipsMalformedRows(t *testing.T) {
	rows := [][]string{
		{"Статус", "Дата", "Трек", "Код"},
		{"Прибыл", "2024-05-01"},                         // too few columns
		{"Прибыл", "2024-05-01", "", "A77"},              // empty tracking
		{"Прибыл", "2024-05-01", "TRK-9", ""},            // empty code
		{"Прибыл", "2024-05-01", "TRK-9", "ZZZ"},         // unknown client
		{"Прибыл", "2024-05-01", "TRK-1", "A77"},         // valid, minimal columns
		{"Прибыл", "2024-05-01", "TRK-2", "A77", "junk"}, // unparseable weight is not a skip
	}

	sets, skipped := Extract("Май", rows, testClientMap(), nil)
	if skipped != 4 {
		t.Fatalf("expected 4 skipped rows, got %d", skipped)
	}
	a77 := sets["A77"]
	if a77 == nil || len(a77.Orders) != 2 {
		t.Fatalf("expected 2 surviving orders, got %+v", a77)
	}
	if a77.Orders[2].Weight != nil {
		t.Fatalf("expected unparseable weight to be nil, got %v", a77.Orders[2].Weight)
	}
}

func TestExtractHeaderOnlyAndEmpty(t *testing.T) {
	sets, skipped := Extract("Май", [][]string{{"Статус", "Дата", "Трек", "Код"}}, testClientMap(), nil)
	if len(sets) != 0 || skipped != 0 {
		t.Fatalf("expected empty result, got %d sets %d skips", len(sets), skipped)
	}

	sets, skipped = Extract("Май", nil, testClientMap(), nil)
	if len(sets) != 0 || skipped != 0 {
		t.Fatalf("expected empty result for nil rows, got %d sets %d skips", len(sets), skipped)
	}
}

func TestExtractKeepsDuplicateTrackingNumbers(t *testing.T) {
	rows := [][]string{
		{"Статус", "Дата", "Трек", "Код"},
		{"Прибыл", "2024-05-01", "TRK-1", "A77"},
		{"Прибыл", "2024-05-01", "TRK-1", "A77"},
	}

	sets, _ := Extract("Май", rows, testClientMap(), nil)
	a77 := sets["A77"]
	if a77 == nil || len(a77.Orders) != 2 {
		t.Fatalf("expected both duplicate rows kept, got %+v", a77)
	}
	numbers := a77.TrackingNumbers()
	if numbers[0] != "TRK-1" || numbers[1] != "TRK-1" {
		t.Fatalf("expected duplicate tracking numbers preserved, got %v", numbers)
	}
}

func TestBuildClientMap(t *testing.T) {
	rows := [][]string{
		{"A77", "Айбек Т.", "996700100518", "Бишкек, Мадина"},
		{"B12", "Мария К.", "996555000111"}, // pickup point optional
		{"", "Без кода", "996700000000"},
		{"C01", "Без телефона", ""},
		{"D02"},
	}

	clients := BuildClientMap(rows)
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients["A77"].PickupPoint != "Бишкек, Мадина" {
		t.Fatalf("unexpected pickup point %q", clients["A77"].PickupPoint)
	}
	if clients["B12"].PickupPoint != "" {
		t.Fatalf("expected empty pickup point, got %q", clients["B12"].PickupPoint)
	}
}

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"2,5", f64(2.5)},
		{"2.5", f64(2.5)},
		{" 800 ", f64(800)},
		{"", nil},
		{"junk", nil},
		{"1,2,3", nil},
	}
	for _, tc := range cases {
		got := parseDecimal(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Fatalf("parseDecimal(%q): expected nil, got %v", tc.in, *got)
		case tc.want != nil && (got == nil || *got != *tc.want):
			t.Fatalf("parseDecimal(%q): expected %v, got %v", tc.in, *tc.want, got)
		}
	}
}

func f64(v float64) *float64 { return &v }
