package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// Info is the runtime snapshot served by /info. Each section is gathered
// independently; a failed section carries its error.
type Info struct {
	Records PartialResult[int64]
	Logs    PartialResult[ports.LogStats]
	Memory  PartialResult[ports.MemoryStats]
}

// InfoService gathers runtime information about the service.
type InfoService struct {
	repo   ports.QuoteRepository
	stats  ports.SystemStats
	logger *slog.Logger
}

// NewInfoService creates an info service.
// Panics if either dependency is nil.
func NewInfoService(repo ports.QuoteRepository, stats ports.SystemStats, logger *slog.Logger) *InfoService {
	if repo == nil || stats == nil {
		panic("InfoService: repository and stats are required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &InfoService{repo: repo, stats: stats, logger: logger}
}

// Gather collects the record count, log directory stats and memory usage
// concurrently.
func (s *InfoService) Gather(ctx context.Context) Info {
	records, logs, memory := ParallelPartial3(ctx, s.repo.Count, s.stats.Logs, s.stats.Memory)

	for name, err := range map[string]error{"database": records.Err, "logs": logs.Err, "memory": memory.Err} {
		if err != nil {
			s.logger.WarnContext(ctx, "info section unavailable",
				slog.String("section", name),
				slog.Any("error", err),
			)
		}
	}

	return Info{Records: records, Logs: logs, Memory: memory}
}
