// Package budget enforces the per-tenant daily spending cap. Reservations are
// optimistic: the estimated cost is added to the tenant's day counter first,
// and rolled back if the new total overshoots the cap. The increment is atomic
// per key, so concurrent reservations for one tenant never double-spend.
package budget

import (
	"fmt"
	"time"

	"lingo-load/internal/store"

	"github.com/sirupsen/logrus"
)

// Day keys outlive the day they cover by a margin so a reservation made just
// before midnight can still be released against the right counter.
const dayKeyTTL = 36 * time.Hour

// Ledger tracks accrued cost per tenant per UTC day, in cost micro-units.
type Ledger struct {
	store    store.Store
	dailyCap int64
	now      func() time.Time
}

// NewLedger creates a Ledger with the given daily cap per tenant. A cap of
// zero or less disables budget enforcement.
func NewLedger(s store.Store, dailyCap int64) *Ledger {
	return &Ledger{store: s, dailyCap: dailyCap, now: time.Now}
}

// TryReserve attempts to reserve amount against the tenant's remaining daily
// budget. It returns false when the reservation would exceed the cap; the
// tenant's total is left unchanged in that case.
func (l *Ledger) TryReserve(tenantID string, amount int64) (bool, error) {
	if l.dailyCap <= 0 || amount <= 0 {
		return true, nil
	}

	key := l.dayKey(tenantID)
	total, err := l.store.IncrBy(key, amount, dayKeyTTL)
	if err != nil {
		return false, fmt.Errorf("budget reservation failed: %w", err)
	}

	if total > l.dailyCap {
		if _, rbErr := l.store.IncrBy(key, -amount, dayKeyTTL); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"tenant": tenantID,
				"amount": amount,
			}).Errorf("Failed to roll back budget reservation: %v", rbErr)
		}
		logrus.WithFields(logrus.Fields{
			"tenant":    tenantID,
			"requested": amount,
			"cap":       l.dailyCap,
		}).Debug("Budget reservation refused")
		return false, nil
	}

	return true, nil
}

// Release returns a previously reserved amount to the tenant's budget. Used
// when a reserved request is cancelled before any cost accrues.
func (l *Ledger) Release(tenantID string, amount int64) error {
	if l.dailyCap <= 0 || amount <= 0 {
		return nil
	}
	if _, err := l.store.IncrBy(l.dayKey(tenantID), -amount, dayKeyTTL); err != nil {
		return fmt.Errorf("budget release failed: %w", err)
	}
	return nil
}

// Spent reports the tenant's accrued total for the current UTC day.
func (l *Ledger) Spent(tenantID string) (int64, error) {
	total, err := l.store.IncrBy(l.dayKey(tenantID), 0, dayKeyTTL)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (l *Ledger) dayKey(tenantID string) string {
	return fmt.Sprintf("budget:%s:%s", tenantID, l.now().UTC().Format("2006-01-02"))
}
