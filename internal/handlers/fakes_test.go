package handlers

import (
	"context"
	"time"

	"github.com/blastrhq/blastr/internal/models"
	"github.com/blastrhq/blastr/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// fakeBlastRepo is an in-memory BlastRepository for handler tests.
type fakeBlastRepo struct {
	blasts []models.Blast
}

func (f *fakeBlastRepo) byID(id string) *models.Blast {
	for i := range f.blasts {
		if f.blasts[i].ID.Hex() == id {
			return &f.blasts[i]
		}
	}
	return nil
}

func (f *fakeBlastRepo) CreateBlast(_ context.Context, blast *models.Blast) error {
	blast.ID = primitive.NewObjectID()
	blast.CreatedAt = time.Now()
	blast.UpdatedAt = blast.CreatedAt
	f.blasts = append(f.blasts, *blast)
	return nil
}

func (f *fakeBlastRepo) GetBlastByID(_ context.Context, id string) (*models.Blast, error) {
	if b := f.byID(id); b != nil {
		copied := *b
		return &copied, nil
	}
	return nil, repositories.ErrBlastNotFound
}

func (f *fakeBlastRepo) GetBlastsByIDs(_ context.Context, ids []string) ([]models.Blast, error) {
	var out []models.Blast
	for _, id := range ids {
		if b := f.byID(id); b != nil {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetAllBlasts(_ context.Context, skip, limit int64) ([]models.Blast, error) {
	out := append([]models.Blast(nil), f.blasts...)
	if skip > 0 {
		if skip >= int64(len(out)) {
			return nil, nil
		}
		out = out[skip:]
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBlastRepo) CountBlasts(context.Context) (int64, error) {
	return int64(len(f.blasts)), nil
}

func (f *fakeBlastRepo) GetBlastsByAuthor(_ context.Context, authorID uint) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetBlastsSince(_ context.Context, id string) ([]models.Blast, error) {
	if id == "" {
		return append([]models.Blast(nil), f.blasts...), nil
	}
	var out []models.Blast
	for _, b := range f.blasts {
		if b.ID.Hex() > id {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetMentionsForUser(_ context.Context, userID uint) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if b.IsBroadcast {
			out = append(out, b)
			continue
		}
		for _, id := range b.MentionedUserIDs {
			if id == userID {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetAllMentions(context.Context) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if b.IsBroadcast || len(b.MentionedUserIDs) > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetPastesByAuthor(_ context.Context, authorID uint) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if b.AuthorID == authorID && b.Extended != "" {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetAllPastes(context.Context) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if b.Extended != "" {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetTodosForUser(_ context.Context, userID uint) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if !b.IsTodo {
			continue
		}
		if b.AuthorID == userID || b.IsBroadcast {
			out = append(out, b)
			continue
		}
		for _, id := range b.MentionedUserIDs {
			if id == userID {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) GetAllTodos(context.Context) ([]models.Blast, error) {
	var out []models.Blast
	for _, b := range f.blasts {
		if b.IsTodo {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBlastRepo) SetDone(_ context.Context, id string, done bool) error {
	b := f.byID(id)
	if b == nil {
		return repositories.ErrBlastNotFound
	}
	b.Done = done
	return nil
}

func (f *fakeBlastRepo) AddFavourite(_ context.Context, id string, userID uint) error {
	b := f.byID(id)
	if b == nil {
		return repositories.ErrBlastNotFound
	}
	for _, u := range b.FavouritedBy {
		if u == userID {
			return nil
		}
	}
	b.FavouritedBy = append(b.FavouritedBy, userID)
	return nil
}

func (f *fakeBlastRepo) RemoveFavourite(_ context.Context, id string, userID uint) error {
	b := f.byID(id)
	if b == nil {
		return repositories.ErrBlastNotFound
	}
	kept := b.FavouritedBy[:0]
	for _, u := range b.FavouritedBy {
		if u != userID {
			kept = append(kept, u)
		}
	}
	b.FavouritedBy = kept
	return nil
}

func (f *fakeBlastRepo) DeleteBlast(_ context.Context, id string) error {
	for i := range f.blasts {
		if f.blasts[i].ID.Hex() == id {
			f.blasts = append(f.blasts[:i], f.blasts[i+1:]...)
			return nil
		}
	}
	return repositories.ErrBlastNotFound
}

func (f *fakeBlastRepo) TopAuthors(context.Context, int64) ([]models.AuthorCount, error) {
	return nil, nil
}

func (f *fakeBlastRepo) CountByDay(context.Context) ([]models.DayCount, error) {
	return nil, nil
}

// fakeUserRepo is an in-memory UserRepository for handler tests.
type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) CreateUser(user *models.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, err := f.GetUserByID(id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUsersByUsernames(usernames []string) ([]models.User, error) {
	var out []models.User
	for _, name := range usernames {
		if u, err := f.GetUserByUsername(name); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].FirebaseUID == uid {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(user *models.User) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) DeleteUser(id uint) error {
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) SearchUsers(string) ([]models.User, error) {
	return f.users, nil
}

// fakeFavouriteRepo is an in-memory FavouriteRepository for handler tests.
type fakeFavouriteRepo struct {
	favourites []models.Favourite
}

func (f *fakeFavouriteRepo) CreateFavourite(fav *models.Favourite) error {
	f.favourites = append(f.favourites, *fav)
	return nil
}

func (f *fakeFavouriteRepo) DeleteFavourite(blastID string, userID uint) error {
	for i := range f.favourites {
		if f.favourites[i].BlastID == blastID && f.favourites[i].UserID == userID {
			f.favourites = append(f.favourites[:i], f.favourites[i+1:]...)
			return nil
		}
	}
	return repositories.ErrFavouriteNotFound
}

func (f *fakeFavouriteRepo) HasUserFavourited(blastID string, userID uint) (bool, error) {
	for _, fav := range f.favourites {
		if fav.BlastID == blastID && fav.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFavouriteRepo) GetFavouritedBlastIDs(userID uint) ([]string, error) {
	var ids []string
	for _, fav := range f.favourites {
		if fav.UserID == userID {
			ids = append(ids, fav.BlastID)
		}
	}
	return ids, nil
}

func (f *fakeFavouriteRepo) GetFavouritesCountByBlastID(blastID string) (int64, error) {
	var n int64
	for _, fav := range f.favourites {
		if fav.BlastID == blastID {
			n++
		}
	}
	return n, nil
}
