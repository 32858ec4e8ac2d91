package compound

import (
	"time"

	"lending/core"
)

// Elapsed seconds between the last update and now, ErrClockRegression when now is earlier
func Elapsed(last, now int64) (uint64, error) {
	if now < last {
		return 0, core.ErrClockRegression
	}

	return uint64(now - last), nil
}

// Now current unix time in seconds
func Now() int64 {
	return time.Now().UTC().Unix()
}
