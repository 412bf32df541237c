package clock

import "time"

// Clock provides time to the application: recorded-at stamps, soft deletes and inbox records.
// Tests use a controllable implementation.
type Clock interface {
	Now() time.Time
}
