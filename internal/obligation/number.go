package obligation

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefixes for business-assigned obligation numbers.
const (
	InvoicePrefix       = "INV"
	PurchaseOrderPrefix = "PO"
)

// FormatNumber returns a number like "INV-2024-001".
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%03d", prefix, year, seq)
}

// ParseNumber splits a formatted number into prefix, year and sequence.
func ParseNumber(number string) (prefix string, year, seq int, err error) {
	parts := strings.SplitN(number, "-", 3)
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid obligation number format: %q", number)
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid year in number %q: %w", number, err)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid sequence in number %q: %w", number, err)
	}

	return parts[0], year, seq, nil
}

// NextSeq returns the next free sequence for a prefix and year given the
// numbers already in use. Unparseable numbers are skipped.
func NextSeq(numbers []string, prefix string, year int) int {
	maxSeq := 0
	for _, n := range numbers {
		p, y, seq, err := ParseNumber(n)
		if err != nil || p != prefix || y != year {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
