package handlers

import (
	"errors"
	"net/http"

	"github.com/blastrhq/blastr/internal/feed"
	"github.com/blastrhq/blastr/internal/models"
	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ToggleHandler handles the done/favourite toggle actions. The action
// verb and target id arrive as an explicit typed payload.
type ToggleHandler struct {
	blastRepository     repositories.BlastRepository
	favouriteRepository repositories.FavouriteRepository
}

// NewToggleHandler creates a new ToggleHandler
func NewToggleHandler(blastRepo repositories.BlastRepository, favouriteRepo repositories.FavouriteRepository) *ToggleHandler {
	return &ToggleHandler{
		blastRepository:     blastRepo,
		favouriteRepository: favouriteRepo,
	}
}

// RegisterToggleRoutes registers the toggle endpoint
func (h *ToggleHandler) RegisterToggleRoutes(g *echo.Group) {
	g.POST("/blasts/actions", h.Toggle)
}

// Toggle applies a check/uncheck/fave/unfave action to a blast on
// behalf of the authenticated viewer.
func (h *ToggleHandler) Toggle(c echo.Context) error {
	viewer := currentViewer(c)
	if viewer == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.BlastActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	blast, err := h.blastRepository.GetBlastByID(c.Request().Context(), req.BlastID)
	if err != nil {
		if errors.Is(err, repositories.ErrBlastNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blast not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	switch req.Action {
	case models.ActionCheck, models.ActionUncheck:
		return h.toggleDone(c, blast, viewer, req.Action == models.ActionCheck)
	case models.ActionFave, models.ActionUnfave:
		return h.toggleFavourite(c, blast, viewer, req.Action == models.ActionFave)
	}
	// unreachable; the validator rejects unknown actions
	return echo.NewHTTPError(http.StatusBadRequest, "Unknown action")
}

func (h *ToggleHandler) toggleDone(c echo.Context, blast *models.Blast, viewer *feed.Viewer, done bool) error {
	if err := feed.MarkDone(blast, viewer, done); err != nil {
		if errors.Is(err, feed.ErrPermissionDenied) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to check off that task")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.blastRepository.SetDone(c.Request().Context(), blast.ID.Hex(), done); err != nil {
		if errors.Is(err, repositories.ErrBlastNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Blast not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"done": done}})
}

func (h *ToggleHandler) toggleFavourite(c echo.Context, blast *models.Blast, viewer *feed.Viewer, fave bool) error {
	changed, err := feed.SetFavourite(blast, viewer, fave)
	if err != nil {
		if errors.Is(err, feed.ErrPermissionDenied) {
			return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to favourite that")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Already in the requested state; idempotent success.
	if !changed {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"favourited": fave}})
	}

	blastID := blast.ID.Hex()
	if fave {
		err = h.favouriteRepository.CreateFavourite(&models.Favourite{UserID: viewer.ID, BlastID: blastID})
	} else {
		err = h.favouriteRepository.DeleteFavourite(blastID, viewer.ID)
		if errors.Is(err, repositories.ErrFavouriteNotFound) {
			err = nil
		}
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Keep the document's favourited_by array in step with the
	// relational row.
	if fave {
		err = h.blastRepository.AddFavourite(c.Request().Context(), blastID, viewer.ID)
	} else {
		err = h.blastRepository.RemoveFavourite(c.Request().Context(), blastID, viewer.ID)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"favourited": fave}})
}
