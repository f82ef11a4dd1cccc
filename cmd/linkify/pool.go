package main

import "runtime"

// Bounds for the automatic worker count.
const (
	minAutoWorkers = 1
	maxAutoWorkers = 8
)

// resolveWorkers determines the batch worker count.
// Priority: flag > config > GOMAXPROCS-based calculation.
func resolveWorkers(flagWorkers, cfgWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if cfgWorkers > 0 {
		return cfgWorkers
	}

	// GOMAXPROCS is already adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / 2
	if n < minAutoWorkers {
		return minAutoWorkers
	}
	if n > maxAutoWorkers {
		return maxAutoWorkers
	}
	return n
}
