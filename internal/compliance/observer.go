// Package compliance hosts the audit-trail collaborators that hang off the
// posting engine's post-commit events. They observe; they never participate
// in the posting unit of work and their outcome cannot fail a post.
package compliance

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/ledger/internal/posting"
)

// MaterialityObserver logs journal entries whose largest line meets the
// configured materiality threshold.
type MaterialityObserver struct {
	threshold decimal.Decimal
	log       *logrus.Logger
}

// NewMaterialityObserver creates an observer with an absolute threshold
// amount. A zero or negative threshold disables assessment.
func NewMaterialityObserver(log *logrus.Logger, threshold decimal.Decimal) *MaterialityObserver {
	return &MaterialityObserver{threshold: threshold, log: log}
}

var _ posting.Observer = (*MaterialityObserver)(nil)

// EntryPosted assesses the committed entry and logs material ones.
func (m *MaterialityObserver) EntryPosted(ev posting.PostedEvent) {
	if !m.threshold.IsPositive() {
		return
	}

	largest := decimal.Zero
	for _, l := range ev.Lines {
		if l.Amount.GreaterThan(largest) {
			largest = l.Amount
		}
	}
	if largest.LessThan(m.threshold) {
		return
	}

	m.log.WithFields(logrus.Fields{
		"entry_id":    ev.EntryID,
		"description": ev.Description,
		"largest":     largest.StringFixed(2),
		"threshold":   m.threshold.StringFixed(2),
	}).Info("material journal entry posted")
}
