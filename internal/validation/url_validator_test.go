package validation

import (
	"testing"
)

func TestValidateURLs(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{
			name:    "valid video page URL",
			input:   []string{"https://www.youtube.com/watch?v=abc123"},
			wantErr: false,
		},
		{
			name:    "valid multiple URLs",
			input:   []string{"https://example.com/video", "http://example.org/clip"},
			wantErr: false,
		},
		{
			name:    "invalid scheme",
			input:   []string{"ftp://example.com/video"},
			wantErr: true,
		},
		{
			name:    "missing host",
			input:   []string{"https:///watch?v=abc"},
			wantErr: true,
		},
		{
			name:    "localhost not a valid source",
			input:   []string{"http://localhost:8765/api/status/T1"},
			wantErr: true,
		},
		{
			name:    "private IP not a valid source",
			input:   []string{"http://192.168.1.10/video"},
			wantErr: true,
		},
		{
			name:    "loopback IP not a valid source",
			input:   []string{"https://127.0.0.1/video"},
			wantErr: true,
		},
		{
			name:    "empty slice (no URLs)",
			input:   []string{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURLs(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
