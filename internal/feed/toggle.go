package feed

import (
	"errors"

	"github.com/blastrhq/blastr/internal/models"
)

// ErrPermissionDenied is returned when a viewer attempts a toggle they
// are not authorized to perform.
var ErrPermissionDenied = errors.New("permission denied")

// MarkDone sets the done state of a todo blast. The permission check
// is recomputed fresh for this viewer rather than reused from an
// earlier annotation. The caller is responsible for persisting the
// change.
func MarkDone(b *models.Blast, viewer *Viewer, done bool) error {
	if !CanMarkDone(b, viewer) {
		return ErrPermissionDenied
	}
	b.Done = done
	return nil
}

// SetFavourite adds or removes viewer from the blast's favourited-by
// set. Idempotent: favouriting an already-favourited blast (or
// un-favouriting a non-favourited one) succeeds without a change.
// changed reports whether the caller needs to persist anything.
func SetFavourite(b *models.Blast, viewer *Viewer, fave bool) (changed bool, err error) {
	if !CanFavourite(b, viewer) {
		return false, ErrPermissionDenied
	}
	already := containsUint(b.FavouritedBy, viewer.ID)
	if fave == already {
		return false, nil
	}
	if fave {
		b.FavouritedBy = append(b.FavouritedBy, viewer.ID)
		return true, nil
	}
	kept := b.FavouritedBy[:0]
	for _, id := range b.FavouritedBy {
		if id != viewer.ID {
			kept = append(kept, id)
		}
	}
	b.FavouritedBy = kept
	return true, nil
}
