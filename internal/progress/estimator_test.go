package progress

import (
	"testing"

	"downtrack/internal/domain"
)

func TestNext_AdoptsServerProgress(t *testing.T) {
	display, counter := Next(40, domain.StatusDownloading, 16)
	if display != 40 {
		t.Errorf("expected server progress 40 to be adopted, got %v", display)
	}
	if counter != 16 {
		t.Errorf("expected counter unchanged at 16, got %v", counter)
	}

	// Server input may move the display down as well as up.
	display, counter = Next(35, domain.StatusDownloading, counter)
	if display != 35 {
		t.Errorf("expected server progress 35 to be adopted, got %v", display)
	}
	if counter != 16 {
		t.Errorf("expected counter unchanged at 16, got %v", counter)
	}
}

func TestNext_SyntheticGrowthIsMonotonicAndCapped(t *testing.T) {
	var counter float64
	var last float64

	for i := 0; i < 300; i++ {
		var display float64
		display, counter = Next(0, domain.StatusDownloading, counter)

		if display < last {
			t.Fatalf("synthetic progress decreased at cycle %d: %v -> %v", i, last, display)
		}
		if display > SyntheticCap {
			t.Fatalf("synthetic progress exceeded cap at cycle %d: %v", i, display)
		}
		last = display
	}

	if last != SyntheticCap {
		t.Errorf("expected synthetic progress to settle at %v, got %v", float64(SyntheticCap), last)
	}
}

func TestNext_DeceleratingSteps(t *testing.T) {
	tests := []struct {
		name    string
		counter float64
		want    float64
	}{
		{name: "fast below 30", counter: 0, want: 8},
		{name: "fast up to threshold", counter: 24, want: 32},
		{name: "medium below 90", counter: 50, want: 52},
		{name: "slow above 90", counter: 92, want: 92.5},
		{name: "capped at 95", counter: 95, want: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display, _ := Next(0, domain.StatusProcessing, tt.counter)
			if display != tt.want {
				t.Errorf("counter %v: expected %v, got %v", tt.counter, tt.want, display)
			}
		})
	}
}

func TestNext_PendingPhasesUseSmallStep(t *testing.T) {
	var counter float64
	var display float64

	for i := 0; i < 50; i++ {
		display, counter = Next(0, domain.StatusQueued, counter)
	}
	if display != PendingCap {
		t.Errorf("expected queued phase capped at %v, got %v", float64(PendingCap), display)
	}

	display, _ = Next(0, domain.StatusRetrying, 5)
	if display != 6 {
		t.Errorf("expected retrying phase to advance by 1, got %v", display)
	}
}

func TestNext_ClampsServerProgress(t *testing.T) {
	display, _ := Next(150, domain.StatusDownloading, 0)
	if display != 100 {
		t.Errorf("expected over-range server progress clamped to 100, got %v", display)
	}
}
