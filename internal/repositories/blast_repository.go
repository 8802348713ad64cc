package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blastrhq/blastr/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBlastNotFound is returned when a referenced blast does not exist.
var ErrBlastNotFound = errors.New("blast not found")

// BlastRepository defines the interface for blast data operations
type BlastRepository interface {
	CreateBlast(ctx context.Context, blast *models.Blast) error
	GetBlastByID(ctx context.Context, id string) (*models.Blast, error)
	GetBlastsByIDs(ctx context.Context, ids []string) ([]models.Blast, error)
	GetAllBlasts(ctx context.Context, skip, limit int64) ([]models.Blast, error)
	CountBlasts(ctx context.Context) (int64, error)
	GetBlastsByAuthor(ctx context.Context, authorID uint) ([]models.Blast, error)
	GetBlastsSince(ctx context.Context, id string) ([]models.Blast, error)
	GetMentionsForUser(ctx context.Context, userID uint) ([]models.Blast, error)
	GetAllMentions(ctx context.Context) ([]models.Blast, error)
	GetPastesByAuthor(ctx context.Context, authorID uint) ([]models.Blast, error)
	GetAllPastes(ctx context.Context) ([]models.Blast, error)
	GetTodosForUser(ctx context.Context, userID uint) ([]models.Blast, error)
	GetAllTodos(ctx context.Context) ([]models.Blast, error)
	SetDone(ctx context.Context, id string, done bool) error
	AddFavourite(ctx context.Context, id string, userID uint) error
	RemoveFavourite(ctx context.Context, id string, userID uint) error
	DeleteBlast(ctx context.Context, id string) error
	TopAuthors(ctx context.Context, limit int64) ([]models.AuthorCount, error)
	CountByDay(ctx context.Context) ([]models.DayCount, error)
}

// MongoBlastRepository implements BlastRepository for MongoDB
type MongoBlastRepository struct {
	collection *mongo.Collection
}

// NewMongoBlastRepository creates a new MongoBlastRepository
func NewMongoBlastRepository(db *mongo.Database) *MongoBlastRepository {
	return &MongoBlastRepository{collection: db.Collection("blasts")}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// CreateBlast creates a new blast in MongoDB
func (r *MongoBlastRepository) CreateBlast(ctx context.Context, blast *models.Blast) error {
	blast.ID = primitive.NewObjectID()
	blast.CreatedAt = time.Now()
	blast.UpdatedAt = blast.CreatedAt
	_, err := r.collection.InsertOne(ctx, blast)
	return err
}

// GetBlastByID retrieves a blast by ID from MongoDB
func (r *MongoBlastRepository) GetBlastByID(ctx context.Context, id string) (*models.Blast, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid blast ID format: %w", err)
	}

	var blast models.Blast
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&blast)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBlastNotFound
		}
		return nil, err
	}
	return &blast, nil
}

// GetBlastsByIDs retrieves the given blasts, newest first. Missing ids
// are silently skipped.
func (r *MongoBlastRepository) GetBlastsByIDs(ctx context.Context, ids []string) ([]models.Blast, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
}

// GetAllBlasts retrieves blasts newest first with pagination
func (r *MongoBlastRepository) GetAllBlasts(ctx context.Context, skip, limit int64) ([]models.Blast, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(newestFirst)
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	return drain(ctx, cursor)
}

// CountBlasts returns the total number of blasts
func (r *MongoBlastRepository) CountBlasts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// GetBlastsByAuthor retrieves one author's blasts, newest first
func (r *MongoBlastRepository) GetBlastsByAuthor(ctx context.Context, authorID uint) ([]models.Blast, error) {
	return r.find(ctx, bson.M{"author_id": authorID})
}

// GetBlastsSince retrieves blasts created after the given id, newest
// first. ObjectIDs are creation-ordered, so an id comparison is enough.
func (r *MongoBlastRepository) GetBlastsSince(ctx context.Context, id string) ([]models.Blast, error) {
	filter := bson.M{}
	if id != "" {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid blast ID format: %w", err)
		}
		filter["_id"] = bson.M{"$gt": objID}
	}
	return r.find(ctx, filter)
}

// GetMentionsForUser retrieves blasts that mention the user, plus
// broadcasts, newest first
func (r *MongoBlastRepository) GetMentionsForUser(ctx context.Context, userID uint) ([]models.Blast, error) {
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"mentioned_user_ids": userID},
		bson.M{"is_broadcast": true},
	}})
}

// GetAllMentions retrieves every blast that mentions somebody or is a
// broadcast, newest first
func (r *MongoBlastRepository) GetAllMentions(ctx context.Context) ([]models.Blast, error) {
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"mentioned_user_ids.0": bson.M{"$exists": true}},
		bson.M{"is_broadcast": true},
	}})
}

// GetPastesByAuthor retrieves one author's blasts carrying extended
// paste content, newest first
func (r *MongoBlastRepository) GetPastesByAuthor(ctx context.Context, authorID uint) ([]models.Blast, error) {
	return r.find(ctx, bson.M{
		"author_id": authorID,
		"extended":  bson.M{"$exists": true, "$ne": ""},
	})
}

// GetAllPastes retrieves every blast carrying extended paste content
func (r *MongoBlastRepository) GetAllPastes(ctx context.Context) ([]models.Blast, error) {
	return r.find(ctx, bson.M{"extended": bson.M{"$exists": true, "$ne": ""}})
}

// GetTodosForUser retrieves the todos visible to a user: their own,
// ones mentioning them, and broadcasts
func (r *MongoBlastRepository) GetTodosForUser(ctx context.Context, userID uint) ([]models.Blast, error) {
	return r.find(ctx, bson.M{
		"is_todo": true,
		"$or": bson.A{
			bson.M{"author_id": userID},
			bson.M{"mentioned_user_ids": userID},
			bson.M{"is_broadcast": true},
		},
	})
}

// GetAllTodos retrieves every todo blast
func (r *MongoBlastRepository) GetAllTodos(ctx context.Context) ([]models.Blast, error) {
	return r.find(ctx, bson.M{"is_todo": true})
}

// SetDone updates the done flag of a blast
func (r *MongoBlastRepository) SetDone(ctx context.Context, id string, done bool) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid blast ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{"done": done, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBlastNotFound
	}
	return nil
}

// AddFavourite adds a user to the blast's favourited_by set
func (r *MongoBlastRepository) AddFavourite(ctx context.Context, id string, userID uint) error {
	return r.updateFavourites(ctx, id, bson.M{"$addToSet": bson.M{"favourited_by": userID}})
}

// RemoveFavourite removes a user from the blast's favourited_by set
func (r *MongoBlastRepository) RemoveFavourite(ctx context.Context, id string, userID uint) error {
	return r.updateFavourites(ctx, id, bson.M{"$pull": bson.M{"favourited_by": userID}})
}

func (r *MongoBlastRepository) updateFavourites(ctx context.Context, id string, update bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid blast ID format: %w", err)
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBlastNotFound
	}
	return nil
}

// DeleteBlast deletes a blast by ID from MongoDB
func (r *MongoBlastRepository) DeleteBlast(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid blast ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrBlastNotFound
	}
	return nil
}

// TopAuthors ranks authors by blast count, most prolific first
func (r *MongoBlastRepository) TopAuthors(ctx context.Context, limit int64) ([]models.AuthorCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         "$author_id",
			"author_name": bson.M{"$first": "$author_name"},
			"count":       bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []models.AuthorCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// CountByDay buckets blasts by UTC calendar day, oldest day first
func (r *MongoBlastRepository) CountByDay(ctx context.Context) ([]models.DayCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$created_at",
				"timezone": "UTC",
			}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []models.DayCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *MongoBlastRepository) find(ctx context.Context, filter interface{}) ([]models.Blast, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	return drain(ctx, cursor)
}

func drain(ctx context.Context, cursor *mongo.Cursor) ([]models.Blast, error) {
	defer cursor.Close(ctx)
	var blasts []models.Blast
	if err := cursor.All(ctx, &blasts); err != nil {
		return nil, err
	}
	return blasts, nil
}
