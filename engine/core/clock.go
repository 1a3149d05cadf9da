package core

import "time"

// Clock measures elapsed wall time between a Start and subsequent Update
// calls. Preparation timing uses one clock per layer.
type Clock struct {
	startTime time.Time
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Update refreshes elapsed time. Should be called just before reading it.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if !c.startTime.IsZero() {
		c.elapsed = time.Since(c.startTime)
	}
}

// Start resets elapsed time and begins measuring.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.elapsed = 0
}

// Stop halts measurement. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

// Elapsed returns the measured duration in seconds.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

// ElapsedMS returns the measured duration in milliseconds.
func (c *Clock) ElapsedMS() float64 {
	return float64(c.elapsed.Microseconds()) / 1000.0
}
