package clock

import "time"

// SystemClock is the wall clock in UTC, truncated to the microsecond precision Postgres
// keeps, so a recorded_at read back from storage equals the value that was written.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
