package port

import "time"

// Clock abstracts wall-clock reads so window and expiry math is testable
// without sleeping.
type Clock func() time.Time

// SystemClock reads time.Now.
func SystemClock() Clock { return time.Now }
