package handlers

import (
	"net/http"
	"time"

	"github.com/blastrhq/blastr/internal/feed"
	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/labstack/echo/v4"
)

// numOnHomepage is how many blasts the homepage feed shows before
// pointing at the full feed.
const numOnHomepage = 100

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	blastRepository repositories.BlastRepository
	userRepository  repositories.UserRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(blastRepo repositories.BlastRepository, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{
		blastRepository: blastRepo,
		userRepository:  userRepo,
	}
}

// RegisterFeedRoutes registers feed routes; all accept anonymous viewers
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/feed/all", h.GetAllFeed)
	g.GET("/blasts/since", h.GetSince)
}

// GetFeed returns the homepage feed: the newest blasts, bundled.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()

	blasts, err := h.blastRepository.GetAllBlasts(ctx, 0, numOnHomepage)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	total, err := h.blastRepository.CountBlasts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authors, err := authorMap(h.userRepository, blasts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := feed.Assemble(blasts, authors, currentViewer(c), feed.Options{Bundle: true})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"items":       items,
			"more_blasts": total > numOnHomepage,
		},
	})
}

// GetAllFeed returns every blast, bundled.
func (h *FeedHandler) GetAllFeed(c echo.Context) error {
	blasts, err := h.blastRepository.GetAllBlasts(c.Request().Context(), 0, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	authors, err := authorMap(h.userRepository, blasts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := feed.Assemble(blasts, authors, currentViewer(c), feed.Options{Bundle: true})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"items":       items,
			"more_blasts": false,
		},
	})
}

// sinceEntry is one row of the polling feed: an annotated blast with
// its message pre-rendered and display strings precomputed.
type sinceEntry struct {
	ID         string    `json:"id"`
	User       string    `json:"user"`
	Message    string    `json:"message"`
	Created    time.Time `json:"created"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Colour     string    `json:"colour"`
	FirstOnDay bool      `json:"first_on_day"`
}

// GetSince returns the blasts newer than the given id, un-bundled,
// for the polling client.
func (h *FeedHandler) GetSince(c echo.Context) error {
	blasts, err := h.blastRepository.GetBlastsSince(c.Request().Context(), c.QueryParam("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	authors, err := authorMap(h.userRepository, blasts)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	annotated := feed.Annotate(blasts, authors, currentViewer(c))
	entries := make([]sinceEntry, len(annotated))
	for i, a := range annotated {
		id := a.ID.Hex()
		entries[i] = sinceEntry{
			ID:         id,
			User:       a.Author.Username,
			Message:    feed.RenderMessage(a.Message),
			Created:    a.CreatedAt,
			Date:       feed.DateLabel(a.CreatedAt),
			Time:       feed.ClockLabel(a.CreatedAt),
			Colour:     "#" + feed.Colour(id),
			FirstOnDay: a.FirstOnDay,
		}
	}

	return c.JSON(http.StatusOK, entries)
}
