package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/abduss/flickpick/internal/auth"
	"github.com/abduss/flickpick/internal/logger"
	"github.com/abduss/flickpick/internal/models"
	"github.com/abduss/flickpick/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRoutes mounts user endpoints onto a router group guarded by auth.AuthMiddleware.
func RegisterRoutes(group gin.IRoutes, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/users", handler.listUsers)
	group.GET("/users/:Name", handler.getUser)
	group.PUT("/users/:Name", handler.updateUser)
	group.DELETE("/users/:Name", handler.deleteUser)
	group.POST("/users/:Name/movies/:MovieID", handler.addFavorite)
	group.DELETE("/users/:Name/movies/:MovieID", handler.removeFavorite)
}

type httpHandler struct {
	service *Service
}

type updateUserRequest struct {
	Name     string `json:"Name" form:"Name" binding:"required,notblank"`
	Email    string `json:"Email" form:"Email" binding:"required,email"`
	Password string `json:"Password" form:"Password" binding:"required,max=72"`
	Birthday string `json:"Birthday" form:"Birthday" binding:"required"`
}

func (h *httpHandler) listUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *httpHandler) getUser(c *gin.Context) {
	u, err := h.service.GetUser(c.Request.Context(), c.Param("Name"))
	if err != nil {
		h.writeError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *httpHandler) updateUser(c *gin.Context) {
	principal, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		if fields, ok := validation.FromBinding(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	birthday, fieldErr := validation.ParseBirthday(req.Birthday)
	if fieldErr != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []validation.FieldError{*fieldErr}})
		return
	}

	name := c.Param("Name")
	updated, err := h.service.UpdateUser(c.Request.Context(), principal.Name, name, UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Birthday: birthday,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": req.Name + " already exists"})
		case errors.Is(err, auth.ErrPasswordTooLong):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []validation.FieldError{validation.PasswordTooLong()}})
		default:
			h.writeError(c, "update user", err)
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) deleteUser(c *gin.Context) {
	principal, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	name := c.Param("Name")
	if err := h.service.DeleteUser(c.Request.Context(), principal.Name, name); err != nil {
		h.writeError(c, "delete user", err)
		return
	}

	c.String(http.StatusOK, name+" was deleted.")
}

func (h *httpHandler) addFavorite(c *gin.Context) {
	h.changeFavorite(c, h.service.AddFavorite)
}

func (h *httpHandler) removeFavorite(c *gin.Context) {
	h.changeFavorite(c, h.service.RemoveFavorite)
}

type favoriteOp func(ctx context.Context, actor, name string, movieID uuid.UUID) (models.User, error)

func (h *httpHandler) changeFavorite(c *gin.Context, op favoriteOp) {
	principal, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	movieID, err := uuid.Parse(c.Param("MovieID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movie id"})
		return
	}

	updated, err := op(c.Request.Context(), principal.Name, c.Param("Name"), movieID)
	if err != nil {
		h.writeError(c, "update favorites", err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, models.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": ErrForbidden.Error()})
	default:
		h.internalError(c, op, err)
	}
}

func (h *httpHandler) internalError(c *gin.Context, op string, err error) {
	logger.FromContext(c).Error(op, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
