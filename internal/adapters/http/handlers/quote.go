package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/insurance-quote-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/insurance-quote-service/internal/app"
)

// QuoteHandler handles the /cotacoes endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// CreateQuote handles POST /cotacoes.
// Returns 201 with the stored quote, or 400 with every field problem found.
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	req, err := dto.DecodeQuoteRequest(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, &dto.ErrorResponse{Error: dto.ErrorValidation, Message: err.Error()})
			return
		}

		c.JSON(http.StatusBadRequest, dto.NewValidationResponse([]dto.FieldDetail{
			{Field: dto.FieldBody, Message: dto.MsgInvalidJSON},
		}))

		return
	}

	rec, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuoteResponse(rec))
}

// ListQuotes handles GET /cotacoes. Quotes are returned newest first.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteListResponse(records))
}

// GetQuote handles GET /cotacoes/:id.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	rec, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(rec))
}

// RegisterQuoteRoutes registers the quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/cotacoes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.GET("/:id", h.GetQuote)
}
