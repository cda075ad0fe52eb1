package movie

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/abduss/flickpick/internal/logger"
	"github.com/abduss/flickpick/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the catalog endpoints onto a router group guarded by auth.AuthMiddleware.
func RegisterRoutes(group gin.IRoutes, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/movies", handler.listMovies)
	group.GET("/movies/:Title", handler.getMovie)
	group.GET("/movies/:Title/poster", handler.downloadPoster)
	group.GET("/movies/:Title/poster-url", handler.posterURL)
	group.GET("/genres/:Name", handler.getGenre)
	group.GET("/directors/:Name", handler.getDirector)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) listMovies(c *gin.Context) {
	movies, err := h.service.ListMovies(c.Request.Context())
	if err != nil {
		h.writeError(c, "list movies", err)
		return
	}
	c.JSON(http.StatusOK, movies)
}

func (h *httpHandler) getMovie(c *gin.Context) {
	movie, err := h.service.GetMovie(c.Request.Context(), c.Param("Title"))
	if err != nil {
		h.writeError(c, "get movie", err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *httpHandler) getGenre(c *gin.Context) {
	genre, err := h.service.GetGenre(c.Request.Context(), c.Param("Name"))
	if err != nil {
		h.writeError(c, "get genre", err)
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (h *httpHandler) getDirector(c *gin.Context) {
	director, err := h.service.GetDirector(c.Request.Context(), c.Param("Name"))
	if err != nil {
		h.writeError(c, "get director", err)
		return
	}
	c.JSON(http.StatusOK, director)
}

func (h *httpHandler) downloadPoster(c *gin.Context) {
	poster, err := h.service.OpenPoster(c.Request.Context(), c.Param("Title"))
	if err != nil {
		h.writeError(c, "open poster", err)
		return
	}
	defer poster.Body.Close()

	c.Header("Content-Type", poster.ContentType)
	if poster.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(poster.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, poster.Body); err != nil {
		logger.FromContext(c).Warn("stream poster", zap.Error(err))
	}
}

func (h *httpHandler) posterURL(c *gin.Context) {
	link, err := h.service.PresignPoster(c.Request.Context(), c.Param("Title"))
	if err != nil {
		h.writeError(c, "presign poster", err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *httpHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, models.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
	case errors.Is(err, ErrGenreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "genre not found"})
	case errors.Is(err, ErrDirectorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "director not found"})
	case errors.Is(err, ErrPosterNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "poster not found"})
	default:
		logger.FromContext(c).Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
