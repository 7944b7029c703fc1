// Package clock provides the date source used by every day-boundary decision.
//
// Business logic never calls time.Now directly; it asks a Clock, so rollover
// and streak behaviour can be exercised across midnight in tests.
package clock

import (
	"sync"
	"time"

	"github.com/julianstephens/limitless/internal/utils"
)

// Clock reports the current instant in the configured timezone.
type Clock interface {
	Now() time.Time
}

// Today returns the calendar date (YYYY-MM-DD) of c.Now().
func Today(c Clock) string {
	return utils.FormatDate(c.Now())
}

// System is the wall clock in a fixed location.
type System struct {
	loc *time.Location
}

// NewSystem creates a wall clock for the given IANA timezone ("" or "Local" for the host zone).
func NewSystem(timezone string) (*System, error) {
	loc, err := utils.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &System{loc: loc}, nil
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Fixed is a manually advanced clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed creates a clock frozen at now.
func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
