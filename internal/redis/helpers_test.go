package redis

import "time"

func testNow() time.Time {
	return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
}
