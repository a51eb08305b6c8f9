package posting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// PostedEvent is published to observers after an entry commits. It carries
// everything an external audit or materiality module needs: the entry id,
// the lines, and the new balance of every affected account. Observers run
// after the unit of work completes and cannot affect its outcome.
type PostedEvent struct {
	EntryID     int64
	Description string
	Timestamp   time.Time
	Lines       []model.JournalLine
	Balances    map[string]decimal.Decimal // account code -> balance after commit
}

// Observer receives posted-entry notifications.
type Observer interface {
	EntryPosted(ev PostedEvent)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ev PostedEvent)

// EntryPosted calls f.
func (f ObserverFunc) EntryPosted(ev PostedEvent) { f(ev) }
