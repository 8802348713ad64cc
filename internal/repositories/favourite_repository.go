package repositories

import (
	"errors"

	"github.com/blastrhq/blastr/internal/models"
	"gorm.io/gorm"
)

// ErrFavouriteNotFound is returned when deleting a favourite that does
// not exist.
var ErrFavouriteNotFound = errors.New("favourite not found")

// FavouriteRepository defines the interface for favourite data operations
type FavouriteRepository interface {
	CreateFavourite(favourite *models.Favourite) error
	DeleteFavourite(blastID string, userID uint) error
	HasUserFavourited(blastID string, userID uint) (bool, error)
	GetFavouritedBlastIDs(userID uint) ([]string, error)
	GetFavouritesCountByBlastID(blastID string) (int64, error)
}

// PostgresFavouriteRepository implements FavouriteRepository for PostgreSQL
type PostgresFavouriteRepository struct {
	db *gorm.DB
}

// NewPostgresFavouriteRepository creates a new PostgresFavouriteRepository
func NewPostgresFavouriteRepository(db *gorm.DB) *PostgresFavouriteRepository {
	return &PostgresFavouriteRepository{db: db}
}

// CreateFavourite creates a new favourite in PostgreSQL
func (r *PostgresFavouriteRepository) CreateFavourite(favourite *models.Favourite) error {
	return r.db.Create(favourite).Error
}

// DeleteFavourite deletes a favourite from PostgreSQL
func (r *PostgresFavouriteRepository) DeleteFavourite(blastID string, userID uint) error {
	res := r.db.Where("blast_id = ? AND user_id = ?", blastID, userID).Delete(&models.Favourite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFavouriteNotFound
	}
	return nil
}

// HasUserFavourited checks if a user has favourited a specific blast
func (r *PostgresFavouriteRepository) HasUserFavourited(blastID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Favourite{}).Where("blast_id = ? AND user_id = ?", blastID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFavouritedBlastIDs retrieves the ids of every blast a user has
// favourited, most recent favourite first
func (r *PostgresFavouriteRepository) GetFavouritedBlastIDs(userID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Favourite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("blast_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetFavouritesCountByBlastID retrieves the count of favourites for a blast
func (r *PostgresFavouriteRepository) GetFavouritesCountByBlastID(blastID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Favourite{}).Where("blast_id = ?", blastID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
