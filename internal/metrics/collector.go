package metrics

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// SystemMetrics holds one system sample
type SystemMetrics struct {
	CPUPercent        float64 // System-wide CPU usage (0-100%)
	ProcessCPUPercent float64 // per core, can exceed 100% on multi-core
	ProcessRSS        uint64  // resident set size of this process in bytes
	MemoryUsedGB      float64
	MemoryTotalGB     float64
	MemoryPercent     float64
	DiskReadMBps      float64
	DiskWriteMBps     float64
	Timestamp         time.Time
}

// Collector periodically samples and logs system metrics
type Collector struct {
	interval      time.Duration
	logger        *zap.Logger
	proc          *process.Process
	onSample      func(*SystemMetrics)
	lastDiskStats map[string]disk.IOCountersStat
	lastDiskTime  time.Time
	mu            sync.RWMutex
	lastMetrics   *SystemMetrics
}

// NewCollector creates a collector. onSample, if not nil, receives every sample.
func NewCollector(interval time.Duration, logger *zap.Logger, onSample func(*SystemMetrics)) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}

	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &Collector{
		interval: interval,
		logger:   logger,
		proc:     proc,
		onSample: onSample,
	}
}

// Start samples until ctx is cancelled
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// GetMetrics returns the last sample
func (c *Collector) GetMetrics() *SystemMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMetrics
}

// Sample takes one sample without logging it
func (c *Collector) Sample() *SystemMetrics {
	m := &SystemMetrics{Timestamp: time.Now()}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		m.CPUPercent = pct[0]
	}

	if c.proc != nil {
		if pct, err := c.proc.Percent(0); err == nil {
			m.ProcessCPUPercent = pct
		}
		if info, err := c.proc.MemoryInfo(); err == nil {
			m.ProcessRSS = info.RSS
		}
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		m.MemoryPercent = vmem.UsedPercent
		m.MemoryUsedGB = float64(vmem.Used) / (1024 * 1024 * 1024)
		m.MemoryTotalGB = float64(vmem.Total) / (1024 * 1024 * 1024)
	}

	c.mu.Lock()
	m.DiskReadMBps, m.DiskWriteMBps = c.diskRates(m.Timestamp)
	c.lastMetrics = m
	c.mu.Unlock()

	if c.onSample != nil {
		c.onSample(m)
	}
	return m
}

func (c *Collector) collect() {
	m := c.Sample()
	c.logger.Info("System metrics",
		zap.Float64("sys_cpu", m.CPUPercent),
		zap.Float64("proc_cpu", m.ProcessCPUPercent),
		zap.String("rss", formatBytes(m.ProcessRSS)),
		zap.Float64("mem_pct", m.MemoryPercent),
		zap.String("mem_used", fmt.Sprintf("%.1f GB", m.MemoryUsedGB)),
		zap.String("disk_r", fmt.Sprintf("%.1f MB/s", m.DiskReadMBps)),
		zap.String("disk_w", fmt.Sprintf("%.1f MB/s", m.DiskWriteMBps)),
	)
}

// diskRates returns read and write MB/s since the previous call.
// The first call only records the baseline.
func (c *Collector) diskRates(now time.Time) (readMBps, writeMBps float64) {
	counters, err := disk.IOCounters()
	if err != nil {
		return 0, 0
	}

	last, lastTime := c.lastDiskStats, c.lastDiskTime
	c.lastDiskStats, c.lastDiskTime = counters, now
	if last == nil {
		return 0, 0
	}

	elapsed := now.Sub(lastTime).Seconds()
	if elapsed < 0.1 {
		return 0, 0
	}

	var readDelta, writeDelta uint64
	for name, counter := range counters {
		prev, ok := last[name]
		if !ok {
			continue
		}
		// counters can wrap
		if counter.ReadBytes >= prev.ReadBytes {
			readDelta += counter.ReadBytes - prev.ReadBytes
		}
		if counter.WriteBytes >= prev.WriteBytes {
			writeDelta += counter.WriteBytes - prev.WriteBytes
		}
	}

	return float64(readDelta) / elapsed / (1024 * 1024),
		float64(writeDelta) / elapsed / (1024 * 1024)
}

// formatBytes formats a byte count with a binary unit and one decimal
func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
