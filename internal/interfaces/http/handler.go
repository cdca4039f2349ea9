// Package http exposes the tagging pipeline over HTTP: one synchronous
// tagging endpoint plus health and metrics.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashishbaghudana/relna/internal/application/tagging"
	"github.com/ashishbaghudana/relna/internal/domain/corpus"
	"github.com/ashishbaghudana/relna/internal/infrastructure/monitoring/logging"
	"github.com/ashishbaghudana/relna/pkg/errors"
)

// TagHandler serves synchronous tagging requests.
type TagHandler struct {
	service *tagging.Service
	logger  logging.Logger
}

// NewTagHandler builds the handler around the application service.
func NewTagHandler(service *tagging.Service, log logging.Logger) *TagHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &TagHandler{service: service, logger: log.Named("http")}
}

// TagRequest is the request body for POST /v1/tag. Each document is a
// list of part texts in order.
type TagRequest struct {
	Documents        map[string][]string `json:"documents" binding:"required"`
	Gold             bool                `json:"gold"`
	UseNormalization bool                `json:"use_normalization"`
}

// TagResponse returns the run summary and the annotated documents.
type TagResponse struct {
	RunID     string                      `json:"run_id"`
	Documents map[string]*corpus.Document `json:"documents"`
	Entities  int                         `json:"entities"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Tag handles POST /v1/tag.
func (h *TagHandler) Tag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    errors.ErrCodeBadRequest.String(),
			Message: err.Error(),
		})
		return
	}
	if len(req.Documents) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    errors.ErrCodeBadRequest.String(),
			Message: "at least one document is required",
		})
		return
	}

	ds := &corpus.Dataset{Documents: map[string]*corpus.Document{}}
	for id, partTexts := range req.Documents {
		parts := make([]*corpus.Part, len(partTexts))
		for i, text := range partTexts {
			parts[i] = &corpus.Part{Text: text}
		}
		ds.Add(&corpus.Document{ID: id, Parts: parts})
	}

	run, err := h.service.Run(c.Request.Context(), ds, req.Gold, req.UseNormalization)
	if err != nil {
		h.logger.Error("tagging request failed", logging.Err(err))
		c.JSON(statusFor(err), ErrorResponse{
			Code:    errors.GetCode(err).String(),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, TagResponse{
		RunID:     run.ID,
		Documents: ds.Documents,
		Entities:  run.Entities,
	})
}

// Healthz handles GET /healthz.
func (h *TagHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeBadRequest, errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeExternalService, errors.ErrCodeServiceUnavailable,
		errors.ErrCodeRecognizerFailure, errors.ErrCodeDocumentTagging:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
