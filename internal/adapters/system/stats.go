// Package system reads host and process statistics with gopsutil.
package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

const bytesPerMB = 1 << 20

var _ ports.SystemStats = (*Stats)(nil)

// Stats implements ports.SystemStats for the running process.
type Stats struct {
	logDir string
	pid    int32
}

// New returns Stats reporting on this process and the log files in logDir.
func New(logDir string) *Stats {
	return &Stats{logDir: logDir, pid: int32(os.Getpid())} //nolint:gosec // pids fit in int32
}

// Memory implements ports.SystemStats.
func (s *Stats) Memory(ctx context.Context) (ports.MemoryStats, error) {
	p, err := process.NewProcessWithContext(ctx, s.pid)
	if err != nil {
		return ports.MemoryStats{}, fmt.Errorf("inspecting process %d: %w", s.pid, err)
	}

	info, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return ports.MemoryStats{}, fmt.Errorf("reading process memory: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return ports.MemoryStats{}, fmt.Errorf("reading host memory: %w", err)
	}

	return ports.MemoryStats{
		UsedMB:  megabytes(info.RSS),
		TotalMB: megabytes(vm.Total),
	}, nil
}

// Logs implements ports.SystemStats. A missing directory counts as empty.
func (s *Stats) Logs(_ context.Context) (ports.LogStats, error) {
	files, err := filepath.Glob(filepath.Join(s.logDir, "*.log*"))
	if err != nil {
		return ports.LogStats{}, fmt.Errorf("listing log files: %w", err)
	}

	var total uint64

	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			return ports.LogStats{}, fmt.Errorf("stat %s: %w", f, err)
		}

		if fi.Mode().IsRegular() {
			total += uint64(fi.Size()) //nolint:gosec // file sizes are non-negative
		}
	}

	return ports.LogStats{
		TotalSizeMB: megabytes(total),
		FilesCount:  len(files),
	}, nil
}

func megabytes(b uint64) float64 {
	return decimal.NewFromUint64(b).
		Div(decimal.NewFromInt(bytesPerMB)).
		RoundBank(2).
		InexactFloat64()
}
