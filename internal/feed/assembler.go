// Package feed owns the display logic for blast listings: annotating
// blasts with viewer-relative flags, coalescing runs of same-day short
// blasts into bundles, and gating the done/favourite toggles.
package feed

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/blastrhq/blastr/internal/models"
)

// Viewer identifies the user a feed is being assembled for. A nil
// *Viewer means anonymous access: every Can* flag comes out false.
type Viewer struct {
	ID   uint
	Name string
}

// AnnotatedBlast is a blast plus its author projection and the flags
// computed for one specific viewer. The flags live on this projection
// rather than on the shared Blast record, so annotating the same
// blasts for two viewers never steps on shared state.
type AnnotatedBlast struct {
	models.Blast
	Author       models.UserCompact `json:"author"`
	CanMarkDone  bool               `json:"can_mark_done"`
	CanFavourite bool               `json:"can_favourite"`
	IsFavourited bool               `json:"is_favourited"`
	FirstOnDay   bool               `json:"first_on_day"`
}

// Bundle is an ordered run of short blasts from a single UTC calendar
// day, grouped for display. Bundles are rebuilt on every assembly call
// and never persisted.
type Bundle struct {
	Blasts []AnnotatedBlast `json:"blasts"`
}

// Summary joins the members' short texts in original order.
func (b *Bundle) Summary() string {
	shorts := make([]string, len(b.Blasts))
	for i, blast := range b.Blasts {
		shorts[i] = blast.Short
	}
	return strings.Join(shorts, ", ")
}

// FirstOnDayCount returns how many members open their calendar day.
func (b *Bundle) FirstOnDayCount() int {
	n := 0
	for _, blast := range b.Blasts {
		if blast.FirstOnDay {
			n++
		}
	}
	return n
}

// MarshalJSON includes the derived summary fields in API responses.
func (b *Bundle) MarshalJSON() ([]byte, error) {
	type bundleAlias Bundle
	return json.Marshal(struct {
		*bundleAlias
		Summary    string `json:"summary"`
		FirstOnDay int    `json:"first_on_day"`
	}{(*bundleAlias)(b), b.Summary(), b.FirstOnDayCount()})
}

// Item is one display entry: either a single annotated blast or a
// bundle, never both. A bundle of size one stays a bundle.
type Item struct {
	IsBundle bool            `json:"is_bundle"`
	Blast    *AnnotatedBlast `json:"blast,omitempty"`
	Bundle   *Bundle         `json:"bundle,omitempty"`
}

// Options controls feed assembly.
type Options struct {
	// Bundle groups consecutive same-day short blasts into Bundle items.
	Bundle bool
}

// day is a UTC calendar date used for first-on-day and bundling checks.
type day struct {
	year  int
	month time.Month
	dom   int
}

func dayOf(t time.Time) day {
	y, m, d := t.UTC().Date()
	return day{y, m, d}
}

// CanMarkDone reports whether viewer may toggle the done state of b:
// the blast must be a todo and the viewer its author, mentioned in it,
// or anyone at all when the blast is a broadcast.
func CanMarkDone(b *models.Blast, viewer *Viewer) bool {
	if viewer == nil || !b.IsTodo {
		return false
	}
	if b.AuthorID == viewer.ID || b.IsBroadcast {
		return true
	}
	return containsUint(b.MentionedUserIDs, viewer.ID)
}

// CanFavourite reports whether viewer may favourite b. Authors cannot
// favourite their own blasts.
func CanFavourite(b *models.Blast, viewer *Viewer) bool {
	return viewer != nil && b.AuthorID != viewer.ID
}

// IsFavouritedBy reports whether viewer already favourited b.
func IsFavouritedBy(b *models.Blast, viewer *Viewer) bool {
	return viewer != nil && containsUint(b.FavouritedBy, viewer.ID)
}

func containsUint(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Annotate computes the viewer-relative projection for every blast, in
// input order. FirstOnDay is order-dependent: it marks the first blast
// of each UTC calendar date as encountered in this pass, so callers
// must pass blasts in the order they will be rendered. authors may be
// nil; missing authors get a zero projection.
func Annotate(blasts []models.Blast, authors map[uint]models.UserCompact, viewer *Viewer) []AnnotatedBlast {
	annotated := make([]AnnotatedBlast, len(blasts))
	seenDays := make(map[day]bool)
	for i, b := range blasts {
		d := dayOf(b.CreatedAt)
		annotated[i] = AnnotatedBlast{
			Blast:        b,
			Author:       authors[b.AuthorID],
			CanMarkDone:  CanMarkDone(&b, viewer),
			CanFavourite: CanFavourite(&b, viewer),
			IsFavourited: IsFavouritedBy(&b, viewer),
			FirstOnDay:   !seenDays[d],
		}
		seenDays[d] = true
	}
	return annotated
}

// Assemble annotates blasts for viewer and, when opts.Bundle is set,
// coalesces runs of consecutive short blasts from the same UTC day
// into bundles. Output preserves the input's relative order. Without
// bundling the result is one standalone item per input blast.
func Assemble(blasts []models.Blast, authors map[uint]models.UserCompact, viewer *Viewer, opts Options) []Item {
	annotated := Annotate(blasts, authors, viewer)
	if !opts.Bundle {
		items := make([]Item, len(annotated))
		for i := range annotated {
			items[i] = Item{Blast: &annotated[i]}
		}
		return items
	}
	return bundle(annotated)
}

// bundle groups runs of short blasts by calendar day. A blast joins
// the open group only if it is bundle-eligible and either no group is
// open or its date matches the group's date. A non-eligible blast
// always closes the open group and is emitted standalone, even when it
// falls on the same day as its neighbours.
func bundle(annotated []AnnotatedBlast) []Item {
	items := make([]Item, 0, len(annotated))
	var current []AnnotatedBlast
	var currentDay day
	flush := func() {
		if len(current) > 0 {
			items = append(items, Item{IsBundle: true, Bundle: &Bundle{Blasts: current}})
			current = nil
		}
	}
	for i := range annotated {
		b := &annotated[i]
		d := dayOf(b.CreatedAt)
		switch {
		case b.Short == "":
			flush()
			items = append(items, Item{Blast: b})
		case len(current) == 0 || d == currentDay:
			current = append(current, *b)
			currentDay = d
		default:
			flush()
			current = append(current, *b)
			currentDay = d
		}
	}
	flush()
	return items
}
