package model

import (
	"strconv"
	"strings"
)

// ClockSeconds converts an "HH:MM:SS" stream-relative timestamp to seconds.
// Malformed timestamps yield 0 so that a bad row sorts to the stream start
// instead of aborting a run.
func ClockSeconds(clock string) int {
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	s, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return h*3600 + m*60 + s
}

// ClockDiffMinutes returns the absolute difference between two "HH:MM:SS"
// timestamps in minutes.
func ClockDiffMinutes(a, b string) float64 {
	diff := ClockSeconds(a) - ClockSeconds(b)
	if diff < 0 {
		diff = -diff
	}
	return float64(diff) / 60
}
