package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todopro/internal/dto"
	"todopro/internal/service"
	"todopro/pkg/response"
	"todopro/pkg/validator"
)

type GroupHandler struct {
	service service.GroupService
}

func NewGroupHandler(service service.GroupService) *GroupHandler {
	return &GroupHandler{service: service}
}

func (h *GroupHandler) MyGroups(c *gin.Context) {
	identity, err := response.Identity(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	groups, err := h.service.MyGroups(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (h *GroupHandler) ListMessages(c *gin.Context) {
	groupID, err := paramID(c, "groupId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), groupID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *GroupHandler) PostMessage(c *gin.Context) {
	identity, err := response.Identity(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	groupID, err := paramID(c, "groupId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	message, err := h.service.PostMessage(c.Request.Context(), identity, groupID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *GroupHandler) MarkRead(c *gin.Context) {
	identity, err := response.Identity(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	groupID, err := paramID(c, "groupId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), identity, groupID, req); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "read position updated"})
}
