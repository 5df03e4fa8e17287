package handler

import (
	app_errors "lingo-load/internal/errors"
	"lingo-load/internal/pipeline"
	"lingo-load/internal/response"

	"github.com/gin-gonic/gin"
)

// Translate handles POST /v1/translate. Glossary conflicts and low-confidence
// detection come back as successful responses tagged with their status; the
// caller inspects the tag and resubmits.
func (s *Server) Translate(c *gin.Context) {
	var req pipeline.TranslationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	result, err := s.Pipeline.Execute(c.Request.Context(), &req)
	if err != nil {
		if apiErr, ok := err.(*app_errors.APIError); ok {
			response.Error(c, apiErr)
			return
		}
		response.Error(c, app_errors.ErrInternalServer)
		return
	}

	response.Success(c, result)
}

// DetectRequest is the body of POST /v1/detect.
type DetectRequest struct {
	Text string `json:"text" binding:"required"`
}

// Detect handles POST /v1/detect for standalone detection callers.
func (s *Server) Detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrInvalidJSON, err.Error()))
		return
	}

	response.Success(c, s.Pipeline.Detect(req.Text))
}
