package posting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// ValidationError describes a single invariant violation in a submitted
// entry.
type ValidationError struct {
	Line        int // 0-based line index, -1 for entry-level problems
	Description string
}

func (e ValidationError) Error() string {
	if e.Line < 0 {
		return e.Description
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Description)
}

// validateLines enforces the structural invariants that can be checked
// before touching the store: a non-empty line set and strictly positive
// amounts. Account existence is checked inside the unit of work.
func validateLines(lines []model.JournalLine) []ValidationError {
	var errs []ValidationError

	if len(lines) == 0 {
		errs = append(errs, ValidationError{Line: -1, Description: "entry has no lines"})
		return errs
	}

	for i, l := range lines {
		if l.AccountCode == "" {
			errs = append(errs, ValidationError{Line: i, Description: "missing account code"})
		}
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, ValidationError{Line: i, Description: fmt.Sprintf("amount %s is not positive", l.Amount)})
		}
	}

	return errs
}
