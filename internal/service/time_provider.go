package service

import (
	"sync"
	"time"
)

// TimeProvider supplies the current time so expiry can be tested.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider implements TimeProvider with a settable time for testing.
type FixedTimeProvider struct {
	mu        sync.Mutex
	fixedTime time.Time
}

// NewFixedTimeProvider creates a new FixedTimeProvider with the given time.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixedTime: t}
}

// Now returns the fixed time.
func (f *FixedTimeProvider) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fixedTime
}

// SetTime updates the fixed time.
func (f *FixedTimeProvider) SetTime(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixedTime = t
}

// AddTime adds a duration to the current fixed time.
func (f *FixedTimeProvider) AddTime(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fixedTime = f.fixedTime.Add(d)
}
