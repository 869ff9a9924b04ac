package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/domain/entity"
	"github.com/oksasatya/recipe-api/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"name255"`
}

type tokenRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateMeRequest struct {
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,pwd"`
	Name     *string `json:"name" binding:"omitempty,name255"`
}

// Create handles POST /user/create.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusCreated, NewUserView(u))
}

// Token handles POST /user/token.
func (h *UserHandler) Token(c *gin.Context) {
	var req tokenRequest
	if !bindJSON(c, &req) {
		return
	}
	tok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, TokenView{Token: tok.Token})
}

// Logout handles POST /user/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), currentUser(c), currentSession(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// Me handles GET /user/me.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewUserView(u))
}

// PatchMe handles PATCH /user/me.
func (h *UserHandler) PatchMe(c *gin.Context) { h.updateMe(c, true) }

// PutMe handles PUT /user/me; email and password are required.
func (h *UserHandler) PutMe(c *gin.Context) { h.updateMe(c, false) }

func (h *UserHandler) updateMe(c *gin.Context, partial bool) {
	var req updateMeRequest
	if !bindJSON(c, &req) {
		return
	}
	if !partial {
		v := &entity.ValidationError{}
		if req.Email == nil {
			v.Add("email", "is required")
		}
		if req.Password == nil {
			v.Add("password", "is required")
		}
		if err := v.OrNil(); err != nil {
			writeError(c, h.Logger, err)
			return
		}
	}

	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUser(c), currentSession(c), application.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, http.StatusOK, NewUserView(u))
}
