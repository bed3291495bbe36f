package osmdata

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// progressInterval is how often Load logs read progress
const progressInterval = 5 * time.Second

// countingReader counts the bytes read through it
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// Progress is a snapshot of input reading
type Progress struct {
	BytesRead  int64
	TotalBytes int64
	Percentage float64
	Elapsed    time.Duration
	ETA        time.Duration
}

// progressTracker estimates completion from bytes read
type progressTracker struct {
	total int64
	start time.Time
}

func newProgressTracker(totalBytes int64) *progressTracker {
	return &progressTracker{total: totalBytes, start: time.Now()}
}

func (p *progressTracker) calculate(bytesRead int64) Progress {
	elapsed := time.Since(p.start)
	pr := Progress{BytesRead: bytesRead, TotalBytes: p.total, Elapsed: elapsed.Round(time.Second)}

	if p.total > 0 && bytesRead > 0 {
		pr.Percentage = float64(bytesRead) / float64(p.total) * 100
		if pr.Percentage < 100 && elapsed > 0 {
			rate := float64(bytesRead) / elapsed.Seconds()
			pr.ETA = time.Duration(float64(p.total-bytesRead) / rate * float64(time.Second)).Round(time.Second)
		}
	}
	return pr
}

// logProgress logs reading progress every interval until ctx is done
func logProgress(ctx context.Context, log *zap.Logger, cr *countingReader, tracker *progressTracker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p := tracker.calculate(cr.n.Load())
			log.Info("Reading input",
				zap.String("read", formatBytes(p.BytesRead)),
				zap.String("total", formatBytes(p.TotalBytes)),
				zap.String("progress", fmt.Sprintf("%.1f%%", p.Percentage)),
				zap.String("eta", formatETA(p.ETA)),
			)
		}
	}
}

// formatETA formats the ETA duration in a human-readable format
func formatETA(d time.Duration) string {
	if d <= 0 {
		return "calculating..."
	}

	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// formatBytes formats bytes in a human-readable format
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
