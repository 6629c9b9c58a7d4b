package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meca_backend/internal/services"
	"meca_backend/internal/services/dto"
)

// VerificationHandler serves the unauthenticated reference-check endpoint.
// The token in the body is the only credential.
type VerificationHandler struct {
	*BaseHandler
	verificationService services.VerificationService
}

func NewVerificationHandler(base *BaseHandler, verificationService services.VerificationService) *VerificationHandler {
	return &VerificationHandler{
		BaseHandler:         base,
		verificationService: verificationService,
	}
}

func (h *VerificationHandler) Verify(c *gin.Context) {
	var req dto.VerifyReferenceRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.verificationService.Verify(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
