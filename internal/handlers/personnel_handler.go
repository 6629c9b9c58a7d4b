package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meca_backend/internal/models"
	"meca_backend/internal/services"
	"meca_backend/internal/services/dto"
)

type PersonnelHandler struct {
	*BaseHandler
	personnelService services.PersonnelService
}

func NewPersonnelHandler(base *BaseHandler, personnelService services.PersonnelService) *PersonnelHandler {
	return &PersonnelHandler{
		BaseHandler:      base,
		personnelService: personnelService,
	}
}

// --- Public handlers ---

func (h *PersonnelHandler) JudgeDirectory(c *gin.Context) {
	h.directory(c, models.PersonnelRoleJudge)
}

func (h *PersonnelHandler) EventDirectorDirectory(c *gin.Context) {
	h.directory(c, models.PersonnelRoleEventDirector)
}

func (h *PersonnelHandler) directory(c *gin.Context, roleType models.PersonnelRole) {
	entries, err := h.personnelService.Directory(h.GetDB(c), roleType)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"directory": entries})
}

// --- Admin handlers ---

func (h *PersonnelHandler) List(c *gin.Context) {
	page, pageSize := ParsePagination(c)
	roleType := models.PersonnelRole(c.Query("role_type"))
	activeOnly := c.Query("active") == "true"

	resp, err := h.personnelService.List(h.GetDB(c), roleType, activeOnly, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PersonnelHandler) Get(c *gin.Context) {
	resp, err := h.personnelService.Get(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PersonnelHandler) Update(c *gin.Context) {
	var req dto.UpdatePersonnelRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.personnelService.Update(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PersonnelHandler) ChangeLevel(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ChangeLevelRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.personnelService.ChangeLevel(h.GetDB(c), c.Param("id"), adminID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PersonnelHandler) LevelHistory(c *gin.Context) {
	history, err := h.personnelService.LevelHistory(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"level_changes": history})
}
