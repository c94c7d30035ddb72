// Package handlers holds the gin handlers for quotes, /info, /health, the
// landing page and the /-/ probes.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

// BuildInfo is served on /-/build. The Makefile stamps Version, Commit and
// BuildTime into cmd/service with -ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// NewBuildInfo fills GoVersion from the running binary.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// HealthHandler serves the public /health check and the /-/ operational probes.
type HealthHandler struct {
	registry  ports.HealthRegistry
	buildInfo BuildInfo
}

func NewHealthHandler(registry ports.HealthRegistry, buildInfo BuildInfo) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		buildInfo: buildInfo,
	}
}

// Health handles GET /health.
// Returns 200 when the database answers and 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	result, err := h.registry.Check(c.Request.Context(), ports.DatabaseCheckName)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   dto.StatusUnhealthy,
			Database: dto.DatabaseHealth{Status: dto.StatusDisconnected, Error: err.Error()},
		})

		return
	}

	if !result.Healthy() {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   dto.StatusUnhealthy,
			Database: dto.DatabaseHealth{Status: dto.StatusDisconnected, Error: result.Error},
		})

		return
	}

	seconds := decimal.NewFromFloat(result.Duration.Seconds()).RoundBank(3).InexactFloat64()

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   dto.StatusHealthy,
		Database: dto.DatabaseHealth{Status: dto.StatusConnected, ResponseTime: &seconds},
	})
}

type livenessResponse struct {
	Status string `json:"status"`
}

// Liveness handles GET /-/live. It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, livenessResponse{Status: "ok"})
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// Readiness handles GET /-/ready. Only a failed required check makes it
// answer 503; a degraded service still takes traffic.
func (h *HealthHandler) Readiness(c *gin.Context) {
	result := h.registry.CheckAll(c.Request.Context())

	status := http.StatusOK
	if result.Status == ports.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, readinessResponse{
		Status: string(result.Status),
		Checks: result.Checks,
	})
}

// BuildInfoHandler handles GET /-/build.
func (h *HealthHandler) BuildInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.buildInfo)
}

// RegisterHealthRoutes mounts GET /health next to the API and the probes
// (live, ready, build, metrics) under /-/ where the access log skips them.
func (h *HealthHandler) RegisterHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)

	probes := engine.Group("/-")
	probes.GET("/live", h.Liveness)
	probes.GET("/ready", h.Readiness)
	probes.GET("/build", h.BuildInfoHandler)
	probes.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
