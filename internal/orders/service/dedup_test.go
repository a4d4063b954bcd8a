package service

import (
	"reflect"
	"testing"

	"cargotrack_backend/internal/orders/domain"
)

func setOf(client domain.ClientRecord, trackingNumbers ...string) *domain.ClientOrderSet {
	set := domain.NewClientOrderSet(client)
	for _, tn := range trackingNumbers {
		set.Add(domain.Order{TrackingNumber: tn, Status: "Прибыл"})
	}
	return set
}

func TestPartitionSplitsSentAndNew(t *testing.T) {
	client := domain.ClientRecord{Code: "A77"}
	sets := map[string]*domain.ClientOrderSet{
		"A77": setOf(client, "TRK-1", "TRK-2", "TRK-3"),
	}
	sent := map[string]struct{}{"TRK-2": {}}

	newSets, stats := Partition(sets, sent)
	if stats.NewCount != 2 || stats.AlreadySentCount != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	got := newSets["A77"].TrackingNumbers()
	if !reflect.DeepEqual(got, []string{"TRK-1", "TRK-3"}) {
		t.Fatalf("unexpected surviving orders %v", got)
	}
}

func TestPartitionDropsFullySentClients(t *testing.T) {
	sets := map[string]*domain.ClientOrderSet{
		"A77": setOf(domain.ClientRecord{Code: "A77"}, "TRK-1"),
		"B12": setOf(domain.ClientRecord{Code: "B12"}, "TRK-2"),
	}
	sent := map[string]struct{}{"TRK-1": {}}

	newSets, stats := Partition(sets, sent)
	if stats.NewCount != 1 || stats.AlreadySentCount != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, ok := newSets["A77"]; ok {
		t.Fatal("fully sent client should not appear in the new partition")
	}
	if _, ok := newSets["B12"]; !ok {
		t.Fatal("client with new orders missing from partition")
	}
}

func TestPartitionDoesNotMutateInput(t *testing.T) {
	client := domain.ClientRecord{Code: "A77"}
	sets := map[string]*domain.ClientOrderSet{
		"A77": setOf(client, "TRK-1", "TRK-2"),
	}

	Partition(sets, map[string]struct{}{"TRK-1": {}})

	if len(sets["A77"].Orders) != 2 {
		t.Fatalf("input set mutated, got %d orders", len(sets["A77"].Orders))
	}
}

// Duplicate tracking numbers within one pass are intentionally not collapsed:
// each survives the ledger filter independently as long as the number is
// not already recorded.
func TestPartitionKeepsIntraRunDuplicates(t *testing.T) {
	client := domain.ClientRecord{Code: "A77"}
	sets := map[string]*domain.ClientOrderSet{
		"A77": setOf(client, "TRK-1", "TRK-1"),
	}

	newSets, stats := Partition(sets, map[string]struct{}{})
	if stats.NewCount != 2 {
		t.Fatalf("expected both duplicate rows counted as new, got %d", stats.NewCount)
	}
	if len(newSets["A77"].Orders) != 2 {
		t.Fatalf("expected both duplicate rows to survive, got %d", len(newSets["A77"].Orders))
	}
}

// Running the same partition twice with the first run's numbers added to the
// sent set yields zero new orders.
func TestPartitionIsIdempotentAcrossRuns(t *testing.T) {
	client := domain.ClientRecord{Code: "A77"}
	sets := map[string]*domain.ClientOrderSet{
		"A77": setOf(client, "TRK-1", "TRK-2"),
	}

	first, stats := Partition(sets, map[string]struct{}{})
	if stats.NewCount != 2 {
		t.Fatalf("expected 2 new on first pass, got %d", stats.NewCount)
	}

	sent := make(map[string]struct{})
	for _, set := range first {
		for _, tn := range set.TrackingNumbers() {
			sent[tn] = struct{}{}
		}
	}

	second, stats := Partition(sets, sent)
	if stats.NewCount != 0 || stats.AlreadySentCount != 2 {
		t.Fatalf("expected nothing new on second pass, got %+v", stats)
	}
	if len(second) != 0 {
		t.Fatalf("expected empty partition on second pass, got %d sets", len(second))
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	newSets, stats := Partition(nil, map[string]struct{}{"TRK-1": {}})
	if len(newSets) != 0 || stats.NewCount != 0 || stats.AlreadySentCount != 0 {
		t.Fatalf("expected empty result, got %d sets %+v", len(newSets), stats)
	}
}
