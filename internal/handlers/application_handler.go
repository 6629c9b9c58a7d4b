package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meca_backend/internal/models"
	"meca_backend/internal/services"
	"meca_backend/internal/services/dto"
	"meca_backend/pkg/apperrors"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

// roleTypeParam resolves the :role_type path segment. Bad values get a 400
// before any service call.
func roleTypeParam(c *gin.Context) (models.PersonnelRole, bool) {
	roleStr := c.Param("role_type")
	if !models.ValidPersonnelRole(roleStr) {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Unknown role type: "+roleStr))
		return "", false
	}
	return models.PersonnelRole(roleStr), true
}

// --- Member handlers ---

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	roleType, ok := roleTypeParam(c)
	if !ok {
		return
	}

	var req dto.SubmitApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.Submit(h.GetDB(c), userID, roleType, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ApplicationHandler) GetOwn(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	roleType, ok := roleTypeParam(c)
	if !ok {
		return
	}

	resp, err := h.applicationService.GetOwn(h.GetDB(c), userID, roleType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- Admin handlers ---

func (h *ApplicationHandler) List(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	roleType := models.PersonnelRole(c.Query("role_type"))
	status := models.ApplicationStatus(c.Query("status"))

	resp, err := h.applicationService.List(h.GetDB(c), roleType, status, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	resp, err := h.applicationService.Get(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) Review(c *gin.Context) {
	reviewerID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.Review(h.GetDB(c), c.Param("id"), reviewerID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApplicationHandler) QuickCreate(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.QuickCreateRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.AdminQuickCreate(h.GetDB(c), adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ApplicationHandler) DirectCreate(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.DirectCreateRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.applicationService.AdminDirectCreate(h.GetDB(c), adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
