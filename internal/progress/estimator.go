// Package progress synthesizes a plausible download percentage for phases
// where the remote service reports none. The estimate grows monotonically
// with a decelerating step so users get continuous feedback without the
// display ever claiming a finished download.
package progress

import (
	"downtrack/internal/domain"
)

const (
	// SyntheticCap is the highest value the estimator may fabricate while a
	// task is downloading or processing; 100 is reserved for confirmed
	// completion.
	SyntheticCap = 95

	// PendingCap bounds the estimate for queued, retrying and unrecognized
	// pending phases, where no real work has been observed yet.
	PendingCap = 20
)

// Next computes the displayed progress for one poll cycle.
//
// If the server reported progress above zero it is adopted directly and the
// synthetic counter does not advance; server input may legitimately move the
// display down as well as up. Otherwise the counter grows by a decelerating
// step (+8 below 30, +2 below 90, +0.5 after) up to SyntheticCap for active
// phases, or by +1 up to PendingCap for everything else.
//
// Returns the value to display and the updated counter to carry into the
// next cycle.
func Next(serverProgress float64, phase domain.TaskStatus, counter float64) (float64, float64) {
	if serverProgress > 0 {
		return clamp(serverProgress), counter
	}

	if phase.IsActive() {
		switch {
		case counter < 30:
			counter += 8
		case counter < 90:
			counter += 2
		default:
			counter += 0.5
		}
		if counter > SyntheticCap {
			counter = SyntheticCap
		}
		return counter, counter
	}

	counter++
	if counter > PendingCap {
		counter = PendingCap
	}
	return counter, counter
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
