package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blast represents a single posted message stored in MongoDB.
// ObjectIDs are creation-ordered, which the since-feed relies on.
type Blast struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID         uint               `json:"author_id" bson:"author_id"`
	AuthorName       string             `json:"author_name" bson:"author_name"` // denormalized for display
	Message          string             `json:"message" bson:"message"`
	Extended         string             `json:"extended,omitempty" bson:"extended,omitempty"` // long-form paste content
	Short            string             `json:"short,omitempty" bson:"short,omitempty"`       // non-empty marks the blast bundle-eligible
	IsTodo           bool               `json:"is_todo" bson:"is_todo"`
	IsBroadcast      bool               `json:"is_broadcast" bson:"is_broadcast"`
	Done             bool               `json:"done" bson:"done"`
	MentionedUserIDs []uint             `json:"mentioned_user_ids,omitempty" bson:"mentioned_user_ids,omitempty"`
	FavouritedBy     []uint             `json:"favourited_by,omitempty" bson:"favourited_by,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateBlastRequest defines the request body for posting a new blast
type CreateBlastRequest struct {
	Message     string `json:"message" validate:"required,min=1,max=1000"`
	Extended    string `json:"extended,omitempty" validate:"omitempty,max=65536"`
	Short       string `json:"short,omitempty" validate:"omitempty,max=100"`
	IsTodo      bool   `json:"is_todo,omitempty"`
	IsBroadcast bool   `json:"is_broadcast,omitempty"`
}

// Toggle action verbs accepted by BlastActionRequest.
const (
	ActionCheck   = "check"
	ActionUncheck = "uncheck"
	ActionFave    = "fave"
	ActionUnfave  = "unfave"
)

// BlastActionRequest defines the request body for the toggle endpoint.
// The action verb and target id travel as explicit typed fields.
type BlastActionRequest struct {
	Action  string `json:"action" validate:"required,oneof=check uncheck fave unfave"`
	BlastID string `json:"blast_id" validate:"required"`
}

// DayCount is one bucket of the per-day posting histogram.
type DayCount struct {
	Day   string `json:"day" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// AuthorCount is one row of the top-authors ranking.
type AuthorCount struct {
	AuthorID   uint   `json:"author_id" bson:"_id"`
	AuthorName string `json:"author_name" bson:"author_name"`
	Count      int64  `json:"count" bson:"count"`
}
