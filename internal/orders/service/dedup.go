package service

import "cargotrack_backend/internal/orders/domain"

// Partition splits extracted order sets into new orders and orders whose
// tracking numbers are already in the ledger. Pure: no side effects, ledger
// persistence is the orchestrator's concern. Sets left empty after filtering
// are dropped, so clients with nothing new receive no notification.
func Partition(sets map[string]*domain.ClientOrderSet, sentSet map[string]struct{}) (map[string]*domain.ClientOrderSet, domain.PartitionStats) {
	newSets := make(map[string]*domain.ClientOrderSet)
	var stats domain.PartitionStats

	for code, set := range sets {
		filtered := domain.NewClientOrderSet(set.Client)
		for _, order := range set.OrdersInOrder() {
			if _, seen := sentSet[order.TrackingNumber]; seen {
				stats.AlreadySentCount++
				continue
			}
			stats.NewCount++
			filtered.Add(order)
		}

		if len(filtered.Orders) > 0 {
			newSets[code] = filtered
		}
	}

	return newSets, stats
}
