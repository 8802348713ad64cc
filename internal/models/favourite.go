package models

import "time"

// Favourite records that a user favourited a blast. The Postgres row is
// the system of record for per-user favourites listings; the blast
// document's favourited_by array is kept in step for render-time checks.
type Favourite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_blast_fave"`
	BlastID   string    `json:"blast_id" gorm:"index;uniqueIndex:idx_user_blast_fave"` // MongoDB ObjectID as string
	CreatedAt time.Time `json:"created_at"`
}
