package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/app"
)

// InfoHandler serves GET /info.
type InfoHandler struct {
	service *app.InfoService
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(service *app.InfoService) *InfoHandler {
	return &InfoHandler{service: service}
}

// Info handles GET /info. It always answers 200; a section that could not
// be gathered carries an error message instead of figures.
func (h *InfoHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, toInfoResponse(h.service.Gather(c.Request.Context())))
}

func toInfoResponse(info app.Info) dto.InfoResponse {
	var resp dto.InfoResponse

	if info.Records.OK() {
		resp.Database.TotalRecords = &info.Records.Value
	} else {
		resp.Database.Error = info.Records.Err.Error()
	}

	if info.Logs.OK() {
		resp.Logs.TotalSizeMB = &info.Logs.Value.TotalSizeMB
		resp.Logs.FilesCount = &info.Logs.Value.FilesCount
	} else {
		resp.Logs.Error = info.Logs.Err.Error()
	}

	if info.Memory.OK() {
		resp.Memory.UsedMB = &info.Memory.Value.UsedMB
		resp.Memory.TotalMB = &info.Memory.Value.TotalMB
	} else {
		resp.Memory.Error = info.Memory.Err.Error()
	}

	return resp
}

// RegisterInfoRoutes registers GET /info.
func (h *InfoHandler) RegisterInfoRoutes(rg *gin.RouterGroup) {
	rg.GET("/info", h.Info)
}
