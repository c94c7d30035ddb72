package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
	}{
		{name: "uses incoming header", header: "req-123"},
		{name: "generates uuid when absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var fromGin, fromCtx string

			router := gin.New()
			router.Use(RequestID())
			router.GET("/", func(c *gin.Context) {
				fromGin = GetRequestID(c)
				fromCtx = RequestIDFromContext(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(HeaderRequestID)
			if tt.header != "" {
				assert.Equal(t, tt.header, got)
			} else {
				_, err := uuid.Parse(got)
				require.NoError(t, err)
			}

			assert.Equal(t, got, fromGin)
			assert.Equal(t, got, fromCtx)
		})
	}
}

func TestCorrelationID(t *testing.T) {
	t.Parallel()

	var fromGin, fromCtx string

	router := gin.New()
	router.Use(CorrelationID())
	router.GET("/", func(c *gin.Context) {
		fromGin = GetCorrelationID(c)
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "corr-456")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "corr-456", w.Header().Get(HeaderCorrelationID))
	assert.Equal(t, "corr-456", fromGin)
	assert.Equal(t, "corr-456", fromCtx)
}

func TestIDsEnrichContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(ContextLogger(base), RequestID(), CorrelationID())
	router.GET("/", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderCorrelationID, "corr-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"correlation_id":"corr-1"`)
}

func TestIDFromContext_Missing(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Empty(t, RequestIDFromContext(nil)) //nolint:staticcheck // nil context is handled
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		skip      []string
		wantLevel string
	}{
		{name: "success at info", path: "/cotacoes", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error at warn", path: "/cotacoes", status: http.StatusBadRequest, wantLevel: "WARN"},
		{name: "server error at error", path: "/cotacoes", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "probe paths skipped", path: "/-/live", status: http.StatusOK},
		{name: "configured path skipped", path: "/health", status: http.StatusOK, skip: []string{"/health"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			router := gin.New()
			router.Use(ContextLogger(logger), Logging(tt.skip...))
			router.GET(tt.path, func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path+"?x=1", nil))

			assert.Equal(t, tt.status, w.Code)

			if tt.wantLevel == "" {
				assert.Empty(t, buf.String())
				return
			}

			out := buf.String()
			assert.Contains(t, out, `"level":"`+tt.wantLevel+`"`)
			assert.Contains(t, out, `"path":"`+tt.path+`?x=1"`)
			assert.Contains(t, out, `"route":"`+tt.path+`"`)
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("returns error envelope", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery(), RequestID())
		router.GET("/panic", func(_ *gin.Context) {
			panic("boom")
		})

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		req.Header.Set(HeaderRequestID, "req-9")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"erro":"Erro interno","mensagem":"Ocorreu um erro interno","traceId":"req-9"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("keeps partial response", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery())
		router.GET("/partial", func(c *gin.Context) {
			c.String(http.StatusOK, "partial")
			panic("late")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "partial", w.Body.String())
	})

	t.Run("passes through without panic", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Recovery())
		router.GET("/ok", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		timeout      time.Duration
		path         string
		wantDeadline bool
	}{
		{name: "sets deadline", timeout: time.Second, path: "/cotacoes", wantDeadline: true},
		{name: "zero disables", timeout: 0, path: "/cotacoes"},
		{name: "probes exempt", timeout: time.Second, path: "/-/ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hasDeadline bool

			router := gin.New()
			router.Use(Timeout(tt.timeout))
			router.GET(tt.path, func(c *gin.Context) {
				_, hasDeadline = c.Request.Context().Deadline()
				c.Status(http.StatusOK)
			})

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantDeadline, hasDeadline)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	var readErr error

	router := gin.New()
	router.Use(BodyLimit(8))
	router.POST("/", func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32))))

	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, readErr, &tooLarge)
	assert.Equal(t, int64(8), tooLarge.Limit)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	cfg := config.CORSConfig{
		AllowOrigin:  "*",
		AllowHeaders: "Content-Type, X-Debug",
		AllowMethods: "GET, POST, OPTIONS",
	}

	newRouter := func(cfg config.CORSConfig) *gin.Engine {
		router := gin.New()
		router.Use(CORS(cfg))
		router.GET("/cotacoes", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		return router
	}

	t.Run("adds headers to responses", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		newRouter(cfg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cotacoes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type, X-Debug", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight on unregistered method returns 204", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		newRouter(cfg).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/cotacoes", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Body.String())
	})

	t.Run("omits empty values", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		newRouter(config.CORSConfig{AllowOrigin: "https://example.com"}).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cotacoes", nil))

		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
		_, ok := w.Header()["Access-Control-Allow-Methods"]
		assert.False(t, ok)
	})
}
