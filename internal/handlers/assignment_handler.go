package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meca_backend/internal/services"
	"meca_backend/internal/services/dto"
)

type AssignmentHandler struct {
	*BaseHandler
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(base *BaseHandler, assignmentService services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       base,
		assignmentService: assignmentService,
	}
}

// --- Personnel handlers ---

func (h *AssignmentHandler) Respond(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RespondAssignmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.assignmentService.Respond(h.GetDB(c), c.Param("id"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssignmentHandler) ListOwn(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	upcomingOnly := c.Query("upcoming") == "true"
	assignments, err := h.assignmentService.ListOwn(h.GetDB(c), userID, upcomingOnly)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// --- Admin handlers ---

func (h *AssignmentHandler) Create(c *gin.Context) {
	requesterID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAssignmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.assignmentService.Create(h.GetDB(c), requesterID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	resp, err := h.assignmentService.Get(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssignmentHandler) List(c *gin.Context) {
	assignments, err := h.assignmentService.List(h.GetDB(c), c.Query("event_id"), c.Query("personnel_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) ListByEvent(c *gin.Context) {
	assignments, err := h.assignmentService.ListByEvent(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) Update(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.assignmentService.Update(h.GetDB(c), c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.assignmentService.Delete(h.GetDB(c), c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment cancelled"})
}
