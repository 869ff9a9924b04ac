package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/pkg/response"
)

// AttributeHandler serves either tags or ingredients, depending on the
// kind of its service.
type AttributeHandler struct {
	Svc    *application.AttributeService
	Logger *logrus.Logger
}

func NewAttributeHandler(svc *application.AttributeService, logger *logrus.Logger) *AttributeHandler {
	return &AttributeHandler{Svc: svc, Logger: logger}
}

type createAttributeRequest struct {
	Name string `json:"name" binding:"required"`
}

type updateAttributeRequest struct {
	Name *string `json:"name"`
}

func (h *AttributeHandler) List(c *gin.Context) {
	assigned, err := queryFlag(c, "assigned_only")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	attrs, err := h.Svc.List(c.Request.Context(), currentUser(c), entity.AttributeFilter{AssignedOnly: assigned})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]AttributeView, len(attrs))
	for i, a := range attrs {
		out[i] = NewAttributeView(*a)
	}
	response.JSON(c, http.StatusOK, out)
}

func (h *AttributeHandler) Create(c *gin.Context) {
	var req createAttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), currentUser(c), req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, NewAttributeView(*a))
}

func (h *AttributeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	a, err := h.Svc.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewAttributeView(*a))
}

// Patch handles PATCH; a missing name leaves the entry unchanged.
func (h *AttributeHandler) Patch(c *gin.Context) { h.update(c, true) }

// Put handles PUT; name is required.
func (h *AttributeHandler) Put(c *gin.Context) { h.update(c, false) }

func (h *AttributeHandler) update(c *gin.Context, partial bool) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateAttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	if !partial && req.Name == nil {
		writeError(c, h.Logger, entity.NewValidationError("name", "is required"))
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), currentUser(c), id, req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewAttributeView(*a))
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}
