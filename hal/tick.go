package hal

import "time"

// TickDuration is the length of one HAL tick.
const TickDuration = time.Millisecond

// Ticks converts a number of HAL ticks to a duration.
func Ticks(n uint32) time.Duration {
	return time.Duration(n) * TickDuration
}
