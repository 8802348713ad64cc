package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/blastrhq/blastr/internal/feed"
	"github.com/blastrhq/blastr/internal/models"
	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// BlastHandler handles HTTP requests related to blasts
type BlastHandler struct {
	blastRepository repositories.BlastRepository
	userRepository  repositories.UserRepository
}

// NewBlastHandler creates a new BlastHandler
func NewBlastHandler(blastRepo repositories.BlastRepository, userRepo repositories.UserRepository) *BlastHandler {
	return &BlastHandler{
		blastRepository: blastRepo,
		userRepository:  userRepo,
	}
}

// RegisterBlastRoutes registers authenticated blast routes
func (h *BlastHandler) RegisterBlastRoutes(g *echo.Group) {
	g.POST("/blasts", h.CreateBlast)
	g.DELETE("/blasts/:id", h.DeleteBlast)
}

// RegisterPublicBlastRoutes registers blast routes open to anonymous viewers
func (h *BlastHandler) RegisterPublicBlastRoutes(g *echo.Group) {
	g.GET("/blasts/:id", h.GetBlast)
}

// CreateBlast posts a new blast. @name tokens in the message are
// resolved to user ids at posting time; unknown names are ignored.
func (h *BlastHandler) CreateBlast(c echo.Context) error {
	viewer := currentViewer(c)
	if viewer == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateBlastRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message must not be blank")
	}

	mentioned, err := h.userRepository.GetUsersByUsernames(feed.MentionNames(message))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	mentionedIDs := make([]uint, 0, len(mentioned))
	for _, u := range mentioned {
		if u.ID != viewer.ID {
			mentionedIDs = append(mentionedIDs, u.ID)
		}
	}

	blast := &models.Blast{
		AuthorID:         viewer.ID,
		AuthorName:       viewer.Name,
		Message:          message,
		Extended:         req.Extended,
		Short:            req.Short,
		IsTodo:           req.IsTodo,
		IsBroadcast:      req.IsBroadcast,
		MentionedUserIDs: mentionedIDs,
	}

	if err := h.blastRepository.CreateBlast(c.Request().Context(), blast); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, blast)
}

// GetBlast retrieves a single blast, annotated for the current viewer
func (h *BlastHandler) GetBlast(c echo.Context) error {
	blast, err := h.blastRepository.GetBlastByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrBlastNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blast not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	blasts := []models.Blast{*blast}
	authors, err := authorMap(h.userRepository, blasts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	annotated := feed.Annotate(blasts, authors, currentViewer(c))
	return c.JSON(http.StatusOK, annotated[0])
}

// DeleteBlast deletes a blast. Only the author may delete it.
func (h *BlastHandler) DeleteBlast(c echo.Context) error {
	viewer := currentViewer(c)
	if viewer == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	blastID := c.Param("id")
	blast, err := h.blastRepository.GetBlastByID(c.Request().Context(), blastID)
	if err != nil {
		if errors.Is(err, repositories.ErrBlastNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blast not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if blast.AuthorID != viewer.ID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the author can delete a blast")
	}

	if err := h.blastRepository.DeleteBlast(c.Request().Context(), blastID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
