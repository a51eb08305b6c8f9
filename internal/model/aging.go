package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket is the day-range classification of an outstanding obligation.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "current"
	Bucket30Days  AgingBucket = "30_days"
	Bucket60Days  AgingBucket = "60_days"
	Bucket90Days  AgingBucket = "90_days"
	BucketOver90  AgingBucket = "over_90_days"
)

// AgingBuckets lists all buckets in ascending age order.
var AgingBuckets = []AgingBucket{BucketCurrent, Bucket30Days, Bucket60Days, Bucket90Days, BucketOver90}

// BucketFor classifies a days-overdue count.
func BucketFor(daysOverdue int) AgingBucket {
	switch {
	case daysOverdue <= 0:
		return BucketCurrent
	case daysOverdue <= 30:
		return Bucket30Days
	case daysOverdue <= 60:
		return Bucket60Days
	case daysOverdue <= 90:
		return Bucket90Days
	default:
		return BucketOver90
	}
}

// AgingEntry is a point-in-time derived fact about one outstanding
// obligation. Entries are recomputed in full on every run, never updated
// incrementally; GenerationID tags the run that produced them.
type AgingEntry struct {
	GenerationID     string
	ScheduleDate     time.Time
	Kind             ObligationKind
	Counterparty     string
	ObligationNumber string
	OriginalAmount   decimal.Decimal
	CurrentBalance   decimal.Decimal
	DaysOverdue      int
	Bucket           AgingBucket
}

// BucketTotal accumulates the per-bucket summary of an aging run.
type BucketTotal struct {
	Count  int
	Amount decimal.Decimal
}

// AgingReport is the result of one aging run: per-obligation entries plus a
// per-bucket summary and grand totals.
type AgingReport struct {
	ScheduleDate time.Time
	Kind         ObligationKind
	GenerationID string
	Entries      []AgingEntry
	Summary      map[AgingBucket]BucketTotal
	TotalCount   int
	TotalAmount  decimal.Decimal
}
