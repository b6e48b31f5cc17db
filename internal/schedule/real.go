package schedule

import "time"

// Real schedules on the wall clock through time.AfterFunc.
type Real struct{}

func NewReal() Real { return Real{} }

func (Real) AfterFunc(d time.Duration, fn func()) Handle {
	return time.AfterFunc(d, fn)
}

func (Real) Now() time.Time { return time.Now() }
