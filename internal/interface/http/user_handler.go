package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-service/internal/application"
	"github.com/oksasatya/go-user-service/internal/domain/repository"
	"github.com/oksasatya/go-user-service/pkg/response"
	"github.com/oksasatya/go-user-service/pkg/validation"
)

// UserHandler exposes the user resource under /users.
// Validation, not-found and conflict bodies are plain field maps; unexpected
// failures use the response envelope.
type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// POST /users/add
func (h *UserHandler) Create(c *gin.Context) {
	var req userapp.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /users/all
func (h *UserHandler) List(c *gin.Context) {
	res, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	res, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req userapp.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"id": "Invalid id"})
		return 0, false
	}
	return id, true
}

// fail maps service errors to status codes.
func (h *UserHandler) fail(c *gin.Context, err error) {
	var verr *userapp.ValidationError
	var cerr *repository.ConflictError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, userapp.ErrUserNotFound):
		c.Status(http.StatusNotFound)
	case errors.As(err, &cerr):
		c.JSON(http.StatusConflict, gin.H{cerr.Field: validation.Label(cerr.Field) + " is already taken"})
	case errors.Is(err, userapp.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"user": "User already exists"})
	default:
		h.Logger.WithError(err).
			WithField("request_id", c.GetString("request_id")).
			Error("user request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
