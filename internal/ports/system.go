package ports

import "context"

// MemoryStats reports process memory in megabytes.
type MemoryStats struct {
	UsedMB  float64
	TotalMB float64
}

// LogStats summarizes the log directory.
type LogStats struct {
	TotalSizeMB float64
	FilesCount  int
}

// SystemStats exposes runtime introspection for the /info endpoint.
type SystemStats interface {
	// Memory returns the resident memory of this process and the host total.
	Memory(ctx context.Context) (MemoryStats, error)

	// Logs returns the size and number of log files, rotated ones included.
	Logs(ctx context.Context) (LogStats, error)
}
