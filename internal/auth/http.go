package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/abduss/flickpick/internal/logger"
	"github.com/abduss/flickpick/internal/metrics"
	"github.com/abduss/flickpick/internal/models"
	"github.com/abduss/flickpick/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the public registration and login endpoints.
// loginMiddleware runs in front of the login handler only.
func RegisterRoutes(router gin.IRoutes, service *Service, loginMiddleware ...gin.HandlerFunc) {
	handler := &httpHandler{service: service}
	router.POST("/users", handler.register)
	router.POST("/login", append(loginMiddleware, handler.login)...)
}

type httpHandler struct {
	service *Service
}

type registerRequest struct {
	Name     string `json:"Name" form:"Name" binding:"required,notblank"`
	Email    string `json:"Email" form:"Email" binding:"required,email"`
	Password string `json:"Password" form:"Password" binding:"required,max=72"`
	Birthday string `json:"Birthday" form:"Birthday" binding:"required"`
}

type loginRequest struct {
	Name     string `json:"Name" form:"Name"`
	Password string `json:"Password" form:"Password"`
}

type loginResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (h *httpHandler) register(c *gin.Context) {
	var req registerRequest
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

	user, err := h.service.Register(c.Request.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Birthday: birthday,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUserExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": req.Name + " already exists"})
		case errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": []validation.FieldError{validation.PasswordTooLong()}})
		default:
			logger.FromContext(c).Error("register user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *httpHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		req = loginRequest{}
	}
	if req.Name == "" {
		req.Name = c.Query("Name")
	}
	if req.Password == "" {
		req.Password = c.Query("Password")
	}
	req.Name = strings.TrimSpace(req.Name)

	result, err := h.service.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			metrics.LoginAttempt("invalid_credentials")
			c.JSON(http.StatusBadRequest, gin.H{"message": ErrInvalidCredentials.Error(), "user": nil})
			return
		}
		metrics.LoginAttempt("error")
		logger.FromContext(c).Error("login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate"})
		return
	}

	metrics.LoginAttempt("success")
	c.JSON(http.StatusOK, loginResponse{User: result.User.SafeUser(), Token: result.Token.Value})
}
