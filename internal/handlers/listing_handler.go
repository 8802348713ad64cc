package handlers

import (
	"context"
	"net/http"

	"github.com/blastrhq/blastr/internal/feed"
	"github.com/blastrhq/blastr/internal/models"
	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ListingHandler serves the per-user and global blast listings:
// profile, mentions, pastes, todos and favourites. Listings are always
// un-bundled; only the feed pages bundle.
type ListingHandler struct {
	blastRepository     repositories.BlastRepository
	userRepository      repositories.UserRepository
	favouriteRepository repositories.FavouriteRepository
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(
	blastRepo repositories.BlastRepository,
	userRepo repositories.UserRepository,
	favouriteRepo repositories.FavouriteRepository,
) *ListingHandler {
	return &ListingHandler{
		blastRepository:     blastRepo,
		userRepository:      userRepo,
		favouriteRepository: favouriteRepo,
	}
}

// RegisterListingRoutes registers listing routes; all accept anonymous viewers
func (h *ListingHandler) RegisterListingRoutes(g *echo.Group) {
	g.GET("/users/:username/blasts", h.GetProfileBlasts)
	g.GET("/users/:username/mentions", h.GetMentions)
	g.GET("/users/:username/pastes", h.GetPastes)
	g.GET("/users/:username/todos", h.GetTodos)
	g.GET("/users/:username/favourites", h.GetFavourites)
	g.GET("/mentions", h.GetAllMentions)
	g.GET("/pastes", h.GetAllPastes)
	g.GET("/todos", h.GetAllTodos)
	g.GET("/favourites", h.GetAllFavourites)
}

// GetProfileBlasts returns one user's blasts, un-bundled
func (h *ListingHandler) GetProfileBlasts(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	viewer := currentViewer(c)
	return h.respond(c, func(ctx context.Context) ([]models.Blast, error) {
		return h.blastRepository.GetBlastsByAuthor(ctx, user.ID)
	}, echo.Map{
		"profile":     user.ToCompact(),
		"show_delete": viewer != nil && viewer.ID == user.ID,
	})
}

// GetMentions returns the blasts mentioning a user, plus broadcasts
func (h *ListingHandler) GetMentions(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, func(ctx context.Context) ([]models.Blast, error) {
		return h.blastRepository.GetMentionsForUser(ctx, user.ID)
	}, echo.Map{"profile": user.ToCompact()})
}

// GetPastes returns one user's blasts carrying extended paste content
func (h *ListingHandler) GetPastes(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, func(ctx context.Context) ([]models.Blast, error) {
		return h.blastRepository.GetPastesByAuthor(ctx, user.ID)
	}, echo.Map{"profile": user.ToCompact()})
}

// GetTodos returns the todos visible to a user
func (h *ListingHandler) GetTodos(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, func(ctx context.Context) ([]models.Blast, error) {
		return h.blastRepository.GetTodosForUser(ctx, user.ID)
	}, echo.Map{"profile": user.ToCompact()})
}

// GetFavourites returns the blasts a user has favourited. The Postgres
// favourites table is the source of truth; the documents are then
// fetched from MongoDB in one query.
func (h *ListingHandler) GetFavourites(c echo.Context) error {
	user, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids, err := h.favouriteRepository.GetFavouritedBlastIDs(user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return h.respond(c, func(ctx context.Context) ([]models.Blast, error) {
		return h.blastRepository.GetBlastsByIDs(ctx, ids)
	}, echo.Map{"profile": user.ToCompact()})
}

// GetAllMentions returns every blast that mentions someone or is a broadcast
func (h *ListingHandler) GetAllMentions(c echo.Context) error {
	return h.respond(c, h.blastRepository.GetAllMentions, nil)
}

// GetAllPastes returns every blast carrying extended paste content
func (h *ListingHandler) GetAllPastes(c echo.Context) error {
	return h.respond(c, h.blastRepository.GetAllPastes, nil)
}

// GetAllTodos returns every todo blast
func (h *ListingHandler) GetAllTodos(c echo.Context) error {
	return h.respond(c, h.blastRepository.GetAllTodos, nil)
}

// GetAllFavourites returns every blast that anybody has favourited
func (h *ListingHandler) GetAllFavourites(c echo.Context) error {
	return h.respond(c, func(ctx context.Context) ([]models.Blast, error) {
		blasts, err := h.blastRepository.GetAllBlasts(ctx, 0, 0)
		if err != nil {
			return nil, err
		}
		favourited := blasts[:0]
		for _, b := range blasts {
			if len(b.FavouritedBy) > 0 {
				favourited = append(favourited, b)
			}
		}
		return favourited, nil
	}, nil)
}

// respond runs a listing query, annotates the result for the current
// viewer and writes the standard listing envelope, merging any extra
// fields into the data object.
func (h *ListingHandler) respond(c echo.Context, query func(context.Context) ([]models.Blast, error), extra echo.Map) error {
	blasts, err := query(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authors, err := authorMap(h.userRepository, blasts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	annotated := feed.Annotate(blasts, authors, currentViewer(c))

	data := echo.Map{"blasts": annotated}
	for k, v := range extra {
		data[k] = v
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data})
}
