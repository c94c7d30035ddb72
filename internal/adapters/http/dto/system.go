package dto

// Health states reported by /health.
const (
	StatusHealthy      = "healthy"
	StatusUnhealthy    = "unhealthy"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}

// DatabaseHealth reports the database probe. ResponseTime is in seconds.
type DatabaseHealth struct {
	Status       string   `json:"status"`
	ResponseTime *float64 `json:"response_time,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// InfoResponse is the body of GET /info.
type InfoResponse struct {
	Database DatabaseInfo `json:"database"`
	Logs     LogsInfo     `json:"logs"`
	Memory   MemoryInfo   `json:"memory"`
}

// DatabaseInfo holds either the record count or the reason it is missing.
type DatabaseInfo struct {
	TotalRecords *int64 `json:"total_records,omitempty"`
	Error        string `json:"error,omitempty"`
}

// LogsInfo describes the log directory.
type LogsInfo struct {
	TotalSizeMB *float64 `json:"total_size_mb,omitempty"`
	FilesCount  *int     `json:"files_count,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// MemoryInfo describes process and host memory in megabytes.
type MemoryInfo struct {
	UsedMB  *float64 `json:"used_mb,omitempty"`
	TotalMB *float64 `json:"total_mb,omitempty"`
	Error   string   `json:"error,omitempty"`
}
