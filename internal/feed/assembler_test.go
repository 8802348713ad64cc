package feed

import (
	"testing"
	"time"

	"github.com/blastrhq/blastr/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day1(hour int) time.Time {
	return time.Date(2024, 1, 1, hour, 0, 0, 0, time.UTC)
}

func day2(hour int) time.Time {
	return time.Date(2024, 1, 2, hour, 0, 0, 0, time.UTC)
}

func shortBlast(short string, created time.Time) models.Blast {
	return models.Blast{
		ID:        primitive.NewObjectID(),
		AuthorID:  1,
		Message:   "msg " + short,
		Short:     short,
		CreatedAt: created,
	}
}

func plainBlast(created time.Time) models.Blast {
	return models.Blast{
		ID:        primitive.NewObjectID(),
		AuthorID:  1,
		Message:   "plain",
		CreatedAt: created,
	}
}

func TestAssembleNoBundling(t *testing.T) {
	blasts := []models.Blast{
		shortBlast("a", day1(10)),
		plainBlast(day1(11)),
		shortBlast("b", day1(12)),
	}

	items := Assemble(blasts, nil, nil, Options{})

	if len(items) != len(blasts) {
		t.Fatalf("got %d items, want %d", len(items), len(blasts))
	}
	for i, item := range items {
		if item.IsBundle || item.Bundle != nil {
			t.Errorf("item %d: unexpected bundle without bundling enabled", i)
		}
		if item.Blast == nil {
			t.Fatalf("item %d: nil blast", i)
		}
		if item.Blast.ID != blasts[i].ID {
			t.Errorf("item %d: input order not preserved", i)
		}
	}
}

func TestAssembleBundling(t *testing.T) {
	tests := []struct {
		name        string
		blasts      []models.Blast
		wantKinds   []bool // true = bundle
		wantSizes   []int  // bundle member count, 0 for standalone
		wantSummary []string
	}{
		{
			name: "single day run becomes one bundle",
			blasts: []models.Blast{
				shortBlast("a", day1(9)),
				shortBlast("b", day1(10)),
				shortBlast("c", day1(11)),
			},
			wantKinds:   []bool{true},
			wantSizes:   []int{3},
			wantSummary: []string{"a, b, c"},
		},
		{
			name: "date boundary splits the run",
			blasts: []models.Blast{
				shortBlast("a", day1(9)),
				shortBlast("b", day1(10)),
				shortBlast("c", day2(9)),
			},
			wantKinds:   []bool{true, true},
			wantSizes:   []int{2, 1},
			wantSummary: []string{"a, b", "c"},
		},
		{
			name: "intervening plain blast breaks the group even same-day",
			blasts: []models.Blast{
				shortBlast("a", day1(9)),
				plainBlast(day1(10)),
				shortBlast("b", day1(11)),
			},
			wantKinds:   []bool{true, false, true},
			wantSizes:   []int{1, 0, 1},
			wantSummary: []string{"a", "", "b"},
		},
		{
			name:      "empty input",
			blasts:    nil,
			wantKinds: []bool{},
		},
		{
			name: "plain blasts only",
			blasts: []models.Blast{
				plainBlast(day1(9)),
				plainBlast(day1(10)),
			},
			wantKinds: []bool{false, false},
			wantSizes: []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Assemble(tt.blasts, nil, nil, Options{Bundle: true})
			if len(items) != len(tt.wantKinds) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.wantKinds))
			}
			for i, item := range items {
				if item.IsBundle != tt.wantKinds[i] {
					t.Errorf("item %d: IsBundle = %v, want %v", i, item.IsBundle, tt.wantKinds[i])
				}
				if tt.wantKinds[i] {
					if item.Bundle == nil {
						t.Fatalf("item %d: bundle item with nil Bundle", i)
					}
					if len(item.Bundle.Blasts) != tt.wantSizes[i] {
						t.Errorf("item %d: bundle size = %d, want %d", i, len(item.Bundle.Blasts), tt.wantSizes[i])
					}
					if got := item.Bundle.Summary(); got != tt.wantSummary[i] {
						t.Errorf("item %d: summary = %q, want %q", i, got, tt.wantSummary[i])
					}
				} else if item.Blast == nil {
					t.Errorf("item %d: standalone item with nil Blast", i)
				}
			}
		})
	}
}

// A single-member group must stay a structural bundle, never collapse
// to a standalone blast.
func TestAssembleSizeOneBundleStaysBundle(t *testing.T) {
	items := Assemble([]models.Blast{shortBlast("solo", day1(9))}, nil, nil, Options{Bundle: true})
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if !items[0].IsBundle || items[0].Bundle == nil {
		t.Fatal("size-one group was not emitted as a bundle")
	}
	if items[0].Blast != nil {
		t.Fatal("bundle item also carries a standalone blast")
	}
}

func TestAssembleNeverMixesDates(t *testing.T) {
	blasts := []models.Blast{
		shortBlast("a", day1(9)),
		shortBlast("b", day2(9)),
		shortBlast("c", day2(10)),
		plainBlast(day2(11)),
		shortBlast("d", day2(12)),
		shortBlast("e", day1(23)), // unordered input is the caller's choice
	}
	items := Assemble(blasts, nil, nil, Options{Bundle: true})
	for i, item := range items {
		if !item.IsBundle {
			continue
		}
		d := dayOf(item.Bundle.Blasts[0].CreatedAt)
		for _, b := range item.Bundle.Blasts {
			if b.Short == "" {
				t.Errorf("item %d: non-short blast absorbed into bundle", i)
			}
			if dayOf(b.CreatedAt) != d {
				t.Errorf("item %d: bundle spans two calendar dates", i)
			}
		}
	}
}

func TestAssembleDeterministic(t *testing.T) {
	blasts := []models.Blast{
		shortBlast("a", day1(9)),
		plainBlast(day1(10)),
		shortBlast("b", day2(9)),
		shortBlast("c", day2(10)),
	}
	first := Assemble(blasts, nil, nil, Options{Bundle: true})
	second := Assemble(blasts, nil, nil, Options{Bundle: true})
	if len(first) != len(second) {
		t.Fatalf("item counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].IsBundle != second[i].IsBundle {
			t.Errorf("item %d: grouping differs between runs", i)
		}
		if first[i].IsBundle && first[i].Bundle.Summary() != second[i].Bundle.Summary() {
			t.Errorf("item %d: bundle contents differ between runs", i)
		}
	}
}

func TestFirstOnDay(t *testing.T) {
	blasts := []models.Blast{
		plainBlast(day1(9)),
		plainBlast(day1(10)),
		plainBlast(day2(9)),
		plainBlast(day2(10)),
		plainBlast(day1(23)),
	}
	annotated := Annotate(blasts, nil, nil)

	want := []bool{true, false, true, false, false}
	for i, a := range annotated {
		if a.FirstOnDay != want[i] {
			t.Errorf("blast %d: FirstOnDay = %v, want %v", i, a.FirstOnDay, want[i])
		}
	}
}

// The UTC day boundary decides grouping, not the timestamp's location.
func TestFirstOnDayUsesUTC(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	// 02:00 local on Jan 2 is 21:00 UTC on Jan 1.
	local := time.Date(2024, 1, 2, 2, 0, 0, 0, zone)
	annotated := Annotate([]models.Blast{
		plainBlast(day1(9)),
		plainBlast(local),
	}, nil, nil)
	if annotated[1].FirstOnDay {
		t.Error("timestamp on the same UTC day was marked first_on_day")
	}
}

func TestAnnotatePermissions(t *testing.T) {
	author := &Viewer{ID: 1, Name: "alice"}
	mentioned := &Viewer{ID: 2, Name: "bob"}
	other := &Viewer{ID: 3, Name: "carol"}

	todo := models.Blast{
		AuthorID:         1,
		Message:          "TODO fix the thing",
		IsTodo:           true,
		MentionedUserIDs: []uint{2},
		FavouritedBy:     []uint{3},
		CreatedAt:        day1(9),
	}
	broadcast := models.Blast{
		AuthorID:    1,
		Message:     "all hands",
		IsTodo:      true,
		IsBroadcast: true,
		CreatedAt:   day1(10),
	}

	tests := []struct {
		name             string
		blast            models.Blast
		viewer           *Viewer
		wantMarkDone     bool
		wantCanFavourite bool
		wantFavourited   bool
	}{
		{"anonymous viewer gets nothing", todo, nil, false, false, false},
		{"author can mark own todo done", todo, author, true, false, false},
		{"mentioned viewer can mark done", todo, mentioned, true, true, false},
		{"unrelated viewer cannot mark done", todo, other, false, true, true},
		{"anyone can mark broadcast todo done", broadcast, other, true, true, false},
		{"author cannot favourite own blast", broadcast, author, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Annotate([]models.Blast{tt.blast}, nil, tt.viewer)[0]
			if a.CanMarkDone != tt.wantMarkDone {
				t.Errorf("CanMarkDone = %v, want %v", a.CanMarkDone, tt.wantMarkDone)
			}
			if a.CanFavourite != tt.wantCanFavourite {
				t.Errorf("CanFavourite = %v, want %v", a.CanFavourite, tt.wantCanFavourite)
			}
			if a.IsFavourited != tt.wantFavourited {
				t.Errorf("IsFavourited = %v, want %v", a.IsFavourited, tt.wantFavourited)
			}
		})
	}
}

func TestAnnotateAttachesAuthors(t *testing.T) {
	authors := map[uint]models.UserCompact{
		1: {ID: 1, Username: "alice", Name: "Alice"},
	}
	annotated := Annotate([]models.Blast{plainBlast(day1(9))}, authors, nil)
	if annotated[0].Author.Username != "alice" {
		t.Errorf("author not attached: got %+v", annotated[0].Author)
	}
}

func TestBundleFirstOnDayCount(t *testing.T) {
	blasts := []models.Blast{
		shortBlast("a", day1(9)),
		shortBlast("b", day1(10)),
		shortBlast("c", day2(9)),
	}
	items := Assemble(blasts, nil, nil, Options{Bundle: true})
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if got := items[0].Bundle.FirstOnDayCount(); got != 1 {
		t.Errorf("first bundle FirstOnDayCount = %d, want 1", got)
	}
	if got := items[1].Bundle.FirstOnDayCount(); got != 1 {
		t.Errorf("second bundle FirstOnDayCount = %d, want 1", got)
	}
}
