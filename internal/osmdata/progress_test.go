package osmdata

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestCountingReader(t *testing.T) {
	cr := &countingReader{r: strings.NewReader("0123456789")}
	if _, err := io.ReadAll(cr); err != nil {
		t.Fatal(err)
	}
	if got := cr.n.Load(); got != 10 {
		t.Errorf("counted %d bytes, want 10", got)
	}
}

func TestProgressCalculate(t *testing.T) {
	p := &progressTracker{total: 1000, start: time.Now().Add(-10 * time.Second)}

	pr := p.calculate(250)
	if pr.Percentage != 25 {
		t.Errorf("Percentage = %v, want 25", pr.Percentage)
	}
	// 25 bytes/s with 750 left
	if pr.ETA < 29*time.Second || pr.ETA > 31*time.Second {
		t.Errorf("ETA = %v, want about 30s", pr.ETA)
	}

	if pr := p.calculate(1000); pr.ETA != 0 {
		t.Errorf("ETA at completion = %v, want 0", pr.ETA)
	}
	if pr := (&progressTracker{start: time.Now()}).calculate(10); pr.Percentage != 0 {
		t.Errorf("unknown total should give 0%%, got %v", pr.Percentage)
	}
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "calculating..."},
		{45 * time.Second, "45s"},
		{2*time.Minute + 5*time.Second, "2m 5s"},
		{time.Hour + time.Minute + time.Second, "1h 1m 1s"},
	}
	for _, tt := range tests {
		if got := formatETA(tt.d); got != tt.want {
			t.Errorf("formatETA(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
