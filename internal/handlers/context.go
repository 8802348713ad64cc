package handlers

import (
	"github.com/blastrhq/blastr/internal/feed"
	"github.com/blastrhq/blastr/internal/models"
	"github.com/blastrhq/blastr/internal/repositories"
	"github.com/labstack/echo/v4"
)

// currentViewer extracts the authenticated viewer from the request
// context, or nil for anonymous requests. The auth middleware stores
// claims under "user"; routes behind optional auth may not have any.
func currentViewer(c echo.Context) *feed.Viewer {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return nil
	}
	return &feed.Viewer{ID: claims.UserID, Name: claims.Username}
}

// authorMap resolves the distinct authors of a blast set in one query.
func authorMap(userRepo repositories.UserRepository, blasts []models.Blast) (map[uint]models.UserCompact, error) {
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(blasts))
	for _, b := range blasts {
		if !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			ids = append(ids, b.AuthorID)
		}
	}

	users, err := userRepo.GetUsersByIDs(ids)
	if err != nil {
		return nil, err
	}
	authors := make(map[uint]models.UserCompact, len(users))
	for i := range users {
		authors[users[i].ID] = users[i].ToCompact()
	}
	return authors, nil
}
