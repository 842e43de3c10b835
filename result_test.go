package pingwatch

import (
	"errors"
	"testing"
)

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{"all", VerbosityAll, false},
		{"error", VerbosityError, false},
		{"none", VerbosityNone, false},
		{"ALL", VerbosityAll, false},
		{"Error", VerbosityError, false},
		{"NONE", VerbosityNone, false},
		{"", "", true},
		{"verbose", "", true},
		{"errors", "", true},
	}

	for _, tt := range tests {
		t.Run("in="+tt.in, func(t *testing.T) {
			got, err := ParseVerbosity(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVerbosity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseVerbosity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProbeResult_OK(t *testing.T) {
	tests := []struct {
		name   string
		result ProbeResult
		want   bool
	}{
		{"200", ProbeResult{StatusCode: 200}, true},
		{"201", ProbeResult{StatusCode: 201}, true},
		{"301", ProbeResult{StatusCode: 301}, false},
		{"404", ProbeResult{StatusCode: 404}, false},
		{"network failure", ProbeResult{Err: errors.New("refused")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.OK(); got != tt.want {
				t.Errorf("OK() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPingPath_Interval(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{1, "1m0s"},
		{0.5, "30s"},
		{5, "5m0s"},
	}
	for _, tt := range tests {
		p := PingPath{IntervalMinutes: tt.minutes}
		if got := p.Interval().String(); got != tt.want {
			t.Errorf("Interval() for %v minutes = %s, want %s", tt.minutes, got, tt.want)
		}
	}
}
