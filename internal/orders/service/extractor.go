package service

import (
	"strconv"
	"strings"

	"cargotrack_backend/internal/orders/domain"
	"cargotrack_backend/platform/logger"
)

// Column offsets within an order row. This is the documented contract with
// the spreadsheet: 0=status, 1=arrival date (unused), 2=tracking number,
// 3=client code, 4=weight, 5=price.
const (
	colStatus       = 0
	colTracking     = 2
	colClientCode   = 3
	colWeight       = 4
	colPrice        = 5
	minOrderColumns = 4
)

// Client directory columns: 0=code, 1=full name, 2=phone, 3=pickup point.
const (
	dirColCode     = 0
	dirColFullName = 1
	dirColPhone    = 2
	dirColPickup   = 3
	minDirColumns  = 3
)

// Extract parses raw sheet rows into per-client order sets. The first row is
// treated as a header. Malformed rows are skipped and counted, never fatal.
// Duplicate tracking numbers within one pass are kept as-is; deduplication
// happens only against the ledger.
func Extract(sheetName string, rows [][]string, clientMap map[string]domain.ClientRecord, log *logger.Logger) (map[string]*domain.ClientOrderSet, int) {
	sets := make(map[string]*domain.ClientOrderSet)
	skipped := 0

	skip := func(rowIndex int, reason string) {
		skipped++
		if log != nil {
			log.RowSkipped(sheetName, rowIndex, reason)
		}
	}

	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		if len(row) < minOrderColumns {
			skip(i, "too few columns")
			continue
		}

		tracking := strings.TrimSpace(row[colTracking])
		if tracking == "" {
			skip(i, "empty tracking number")
			continue
		}

		code := strings.TrimSpace(row[colClientCode])
		if code == "" {
			skip(i, "empty client code")
			continue
		}

		client, ok := clientMap[code]
		if !ok {
			skip(i, "unknown client code "+code)
			continue
		}

		order := domain.Order{
			TrackingNumber: tracking,
			Status:         strings.TrimSpace(row[colStatus]),
			Weight:         parseDecimal(cellAt(row, colWeight)),
			Price:          parseDecimal(cellAt(row, colPrice)),
		}

		set, ok := sets[code]
		if !ok {
			set = domain.NewClientOrderSet(client)
			sets[code] = set
		}
		set.Add(order)
	}

	return sets, skipped
}

// BuildClientMap parses client directory rows into a code-keyed lookup table.
// Rows without a code or phone are ignored.
func BuildClientMap(rows [][]string) map[string]domain.ClientRecord {
	clients := make(map[string]domain.ClientRecord)
	for _, row := range rows {
		if len(row) < minDirColumns {
			continue
		}

		code := strings.TrimSpace(row[dirColCode])
		phone := strings.TrimSpace(row[dirColPhone])
		if code == "" || phone == "" {
			continue
		}

		clients[code] = domain.ClientRecord{
			Code:        code,
			FullName:    strings.TrimSpace(row[dirColFullName]),
			PhoneNumber: phone,
			PickupPoint: strings.TrimSpace(cellAt(row, dirColPickup)),
		}
	}
	return clients
}

// parseDecimal accepts decimal-comma and decimal-point representations.
// Absent or unparseable values become nil, never zero.
func parseDecimal(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &value
}

func cellAt(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return row[index]
}
