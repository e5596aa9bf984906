package util

import "time"

// Rate computes the per-second rate between two counter values. A counter
// that went backwards (process restart, counter reset) reports 0 rather
// than a huge bogus value.
func Rate(prev, curr uint64, dt time.Duration) float64 {
	if dt <= 0 || curr < prev {
		return 0
	}
	return float64(curr-prev) / dt.Seconds()
}

// RateKBs is Rate expressed in KB/s (1 KB = 1024 bytes).
func RateKBs(prev, curr uint64, dt time.Duration) float64 {
	return Rate(prev, curr, dt) / 1024
}

// Delta returns curr - prev, or 0 if curr < prev (counter wrap).
func Delta(prev, curr uint64) uint64 {
	if curr < prev {
		return 0
	}
	return curr - prev
}
