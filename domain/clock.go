package domain

import "time"

const timeLayout = "15:04:05"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FormatTime renders t as a zero padded HH:MM:SS string in t's own location.
func FormatTime(t time.Time) string {
	return t.Format(timeLayout)
}
