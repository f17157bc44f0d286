package wardbot

import (
	"sync/atomic"
	"time"
)

// AtomicFlag is a test-and-set spinlock flag
type AtomicFlag struct {
	flag uint32
}

// TestAndSet returns the old value of the flag after setting it
func (f *AtomicFlag) TestAndSet() bool {
	return atomic.SwapUint32(&f.flag, 1) != 0
}

// Clear resets the flag to zero
func (f *AtomicFlag) Clear() {
	atomic.SwapUint32(&f.flag, 0)
}

// AtomicBool is an atomically accessed boolean
type AtomicBool struct {
	flag uint32
}

// Get returns the current value
func (b *AtomicBool) Get() bool {
	return atomic.LoadUint32(&b.flag) != 0
}

// Set assigns the value atomically
func (b *AtomicBool) Set(value bool) {
	var v uint32
	if value {
		v = 1
	}
	atomic.StoreUint32(&b.flag, v)
}

// SaturationLimit tracks the last N event times in a ring buffer
type SaturationLimit struct {
	times []int64
	index int
	lock  AtomicFlag
}

func realmod(x int, m int) int {
	x %= m
	if x < 0 {
		x += m
	}
	return x
}

func (s *SaturationLimit) append(time int64) {
	for s.lock.TestAndSet() {
	}
	s.index = realmod(s.index+1, len(s.times))
	s.times[s.index] = time
	s.lock.Clear()
}

// check returns true if inserting an event now would exceed num events per period.
func (s *SaturationLimit) check(num int, period int64, curtime int64) bool {
	for s.lock.TestAndSet() {
	}
	i := realmod(s.index-(num-1), len(s.times))
	b := (curtime - s.times[i]) <= period
	s.lock.Clear()
	return b
}

func (s *SaturationLimit) resize(size int) {
	for s.lock.TestAndSet() {
	}
	n := make([]int64, size)
	copy(n, s.times)
	s.times = n
	s.lock.Clear()
}

// CheckRateLimit returns true if the interval has elapsed without modifying the timestamp
func CheckRateLimit(prevtime *int64, interval int64) bool {
	return time.Now().UTC().Unix()-(*prevtime) > interval
}

// RateLimit returns true and updates the timestamp if the interval has elapsed
func RateLimit(prevtime *int64, interval int64) bool {
	t := time.Now().UTC().Unix()
	d := (*prevtime)
	if t-d > interval {
		*prevtime = t
		return true
	}
	return false
}
