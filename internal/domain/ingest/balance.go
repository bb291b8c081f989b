// Package ingest is the write path for balanced transaction sets: it
// checks the balance of raw lines and commits them as one journal entry.
package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
)

// Line is one prospective transaction line.
type Line struct {
	AccountID   id.ID                `json:"accountId" yaml:"account_id"`
	AccountCode string               `json:"accountCode,omitempty" yaml:"account_code,omitempty"`
	TxType      accounts.BalanceType `json:"txType" yaml:"tx_type"`
	Amount      types.Money          `json:"amount" yaml:"amount"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate checks the direction and sign of the line.
func (l Line) Validate() error {
	if !l.TxType.IsValid() {
		return apperror.NewValidation(fmt.Sprintf("invalid transaction type %q", l.TxType))
	}
	if l.Amount.IsNegative() {
		return apperror.NewValidation("transaction amount must not be negative").
			WithDetail("amount", l.Amount.String())
	}
	return nil
}

// Diff is the balance of a set of lines.
type Diff struct {
	Credits types.Money
	Debits  types.Money
	// Diff is credits minus debits.
	Diff             types.Money
	Balanced         bool
	ExceedsTolerance bool
}

// DiffTxData sums both sides of lines and compares the drift to tolerance.
func DiffTxData(lines []Line, tolerance types.Money) Diff {
	credits, debits := types.Zero(), types.Zero()
	for _, l := range lines {
		if l.TxType == accounts.Credit {
			credits = credits.Add(l.Amount)
		} else {
			debits = debits.Add(l.Amount)
		}
	}
	diff := credits.Sub(debits)
	return Diff{
		Credits:          credits,
		Debits:           debits,
		Diff:             diff,
		Balanced:         diff.IsZero(),
		ExceedsTolerance: diff.Abs().GreaterThan(tolerance),
	}
}

// Correction configures ReconcileRoundingDrift.
type Correction struct {
	Enabled   bool
	Step      types.Money
	Tolerance types.Money
	// Rand picks the lines to nudge; a time-seeded source is used when nil.
	Rand *rand.Rand
}

// ReconcileRoundingDrift absorbs a small imbalance by nudging randomly
// chosen lines by Step until debits equal credits. The last nudge is
// clamped to the remaining drift. Lines are modified in place.
//
// It returns false without touching lines when correction is disabled and
// the lines do not balance. Drift above the tolerance is an error.
func ReconcileRoundingDrift(lines []Line, c Correction) (bool, error) {
	d := DiffTxData(lines, c.Tolerance)
	if d.Balanced {
		return true, nil
	}
	if !c.Enabled {
		return false, nil
	}
	if d.ExceedsTolerance {
		return false, apperror.NewNotInBalance(d.Diff.String(), c.Tolerance.String())
	}

	step := c.Step
	if !step.IsPositive() {
		step = types.MustMoney("0.01")
	}
	rnd := c.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var debits, credits []int
	for i, l := range lines {
		if l.TxType == accounts.Credit {
			credits = append(credits, i)
		} else {
			debits = append(debits, i)
		}
	}

	diff := d.Diff
	for !diff.IsZero() {
		nudge := types.MinAbs(step, diff.Abs())
		// Credits exceed debits: raise a debit or lower a credit.
		raise, lower := debits, credits
		if diff.IsNegative() {
			raise, lower = credits, debits
		}

		i, up := pick(rnd, raise, lower, lines, nudge)
		if i < 0 {
			return false, apperror.NewNotInBalance(diff.String(), c.Tolerance.String())
		}
		if up {
			lines[i].Amount = lines[i].Amount.Add(nudge)
		} else {
			lines[i].Amount = lines[i].Amount.Sub(nudge)
		}
		diff = DiffTxData(lines, c.Tolerance).Diff
	}
	return true, nil
}

// pick chooses a side at random and a line on it. Lowering is only
// allowed when the line stays non-negative.
func pick(rnd *rand.Rand, raise, lower []int, lines []Line, nudge types.Money) (int, bool) {
	var lowerable []int
	for _, i := range lower {
		if lines[i].Amount.GreaterThanOrEqual(nudge) {
			lowerable = append(lowerable, i)
		}
	}
	switch {
	case len(raise) == 0 && len(lowerable) == 0:
		return -1, false
	case len(raise) == 0:
		return lowerable[rnd.Intn(len(lowerable))], false
	case len(lowerable) == 0:
		return raise[rnd.Intn(len(raise))], true
	}
	if rnd.Intn(2) == 0 {
		return raise[rnd.Intn(len(raise))], true
	}
	return lowerable[rnd.Intn(len(lowerable))], false
}
