package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain"
	"github.com/kailas-cloud/figdex/internal/domain/figure"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "figdex.db"))
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	return store
}

func saveFigure(t *testing.T, store *Store, f figure.Figure) {
	t.Helper()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = now
	}
	require.NoError(t, store.Save(context.Background(), &f))
}

func ids(figs []figure.Figure) []string {
	out := make([]string, len(figs))
	for i, f := range figs {
		out[i] = f.ID
	}
	return out
}

func TestStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveFigure(t, store, figure.Figure{
		ID:      "f1",
		OwnerID: "u1",
		Name:    "Hatsune Miku",
		CompanyRoles: []figure.CompanyRole{
			{Company: "Max Factory", Role: "Distributor"},
			{Company: "Good Smile Company", Role: "Manufacturer"},
		},
		ArtistRoles: []figure.ArtistRole{{Artist: "KEI", Role: "Illustrator"}},
		Scale:       "1/8",
		Releases:    []figure.Release{{Barcode: "4580416940573"}},
		Tags:        []string{"vocaloid", "location:Shelf A"},
		Popularity:  42,
	})

	got, err := store.Get(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "Hatsune Miku", got.Name)
	assert.Equal(t, "Good Smile Company", got.ManufacturerName())
	assert.Equal(t, "Shelf A", got.ResolvedLocation())
	assert.Len(t, got.CompanyRoles, 2)
	assert.Equal(t, "4580416940573", got.Releases[0].Barcode)
	assert.Equal(t, int64(42), got.Popularity)
	assert.Equal(t, []string{"vocaloid", "location:Shelf A"}, got.Tags)
}

func TestStore_GetScopedByOwner(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "f1", OwnerID: "u1", Name: "Saber"})

	_, err := store.Get(context.Background(), "u2", "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveFigure(t, store, figure.Figure{ID: "f1", OwnerID: "u1", Name: "Saber"})
	saveFigure(t, store, figure.Figure{ID: "f1", OwnerID: "u1", Name: "Saber Alter"})

	figs, err := store.ListByOwner(ctx, "u1", 0, 0)
	require.NoError(t, err)
	require.Len(t, figs, 1)
	assert.Equal(t, "Saber Alter", figs[0].Name)
}

func TestStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveFigure(t, store, figure.Figure{ID: "f1", OwnerID: "u1", Name: "Saber"})

	require.NoError(t, store.Delete(ctx, "u1", "f1"))
	assert.ErrorIs(t, store.Delete(ctx, "u1", "f1"), domain.ErrNotFound)

	_, err := store.Get(ctx, "u1", "f1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListByOwner_Pagination(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveFigure(t, store, figure.Figure{ID: "c", OwnerID: "u1", Name: "charlie"})
	saveFigure(t, store, figure.Figure{ID: "a", OwnerID: "u1", Name: "Alpha"})
	saveFigure(t, store, figure.Figure{ID: "b", OwnerID: "u1", Name: "bravo"})
	saveFigure(t, store, figure.Figure{ID: "x", OwnerID: "u2", Name: "Alpha"})

	all, err := store.ListByOwner(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	page, err := store.ListByOwner(ctx, "u1", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(page))
}

func TestStore_FindFiltered_OwnerScope(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "a", OwnerID: "ownerA", Name: "Saber"})
	saveFigure(t, store, figure.Figure{ID: "b", OwnerID: "ownerB", Name: "Saber"})

	figs, err := store.FindFiltered(context.Background(), "ownerA", db.Predicate{
		Terms:  []string{"sab"},
		Fields: []string{db.FieldName, db.FieldManufacturer, db.FieldScale},
		Mode:   db.MatchWordPrefix,
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(figs))
}

func TestStore_FindFiltered_WordPrefix(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "1", OwnerID: "u1", Name: "Hatsune Miku"})
	saveFigure(t, store, figure.Figure{ID: "2", OwnerID: "u1", Name: "Racing Miku"})
	saveFigure(t, store, figure.Figure{ID: "3", OwnerID: "u1", Name: "Mikumo"})
	saveFigure(t, store, figure.Figure{ID: "4", OwnerID: "u1", Name: "Akimiku"})

	figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
		Terms:  []string{"MIKU"},
		Fields: []string{db.FieldName},
		Mode:   db.MatchWordPrefix,
	}, 10)
	require.NoError(t, err)
	// ordered by name; "Akimiku" has no word starting with miku
	assert.Equal(t, []string{"1", "3", "2"}, ids(figs))
}

func TestStore_FindFiltered_WordPrefixPhraseInOneField(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "1", OwnerID: "u1", Name: "Hatsune Miku", Manufacturer: "Good Smile"})

	find := func(phrase string) []string {
		figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
			Terms:  []string{phrase},
			Fields: []string{db.FieldName, db.FieldManufacturer},
			Mode:   db.MatchWordPrefix,
		}, 10)
		require.NoError(t, err)
		return ids(figs)
	}

	assert.Equal(t, []string{"1"}, find("hatsune mi"))
	assert.Equal(t, []string{"1"}, find("miku"))
	assert.Equal(t, []string{"1"}, find("good sm"))
	assert.Empty(t, find("miku good"))
}

func TestStore_FindFiltered_UnicodeCaseFolding(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "1", OwnerID: "u1", Name: "Ōkami Amaterasu"})
	saveFigure(t, store, figure.Figure{ID: "2", OwnerID: "u1", Name: "ÉLAN"})

	find := func(term string, mode db.MatchMode) []string {
		figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
			Terms:  []string{term},
			Fields: []string{db.FieldName},
			Mode:   mode,
		}, 10)
		require.NoError(t, err)
		return ids(figs)
	}

	assert.Equal(t, []string{"1"}, find("Ōkami", db.MatchWordPrefix))
	assert.Equal(t, []string{"1"}, find("ōkami", db.MatchWordPrefix))
	assert.Equal(t, []string{"2"}, find("éla", db.MatchSubstring))
}

func TestStore_FindFiltered_SubstringAcrossEffectiveFields(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{
		ID: "1", OwnerID: "u1", Name: "Nendoroid Saber",
		CompanyRoles: []figure.CompanyRole{{Company: "Good Smile Company", Role: "Manufacturer"}},
	})
	saveFigure(t, store, figure.Figure{ID: "2", OwnerID: "u1", Name: "Rin", Tags: []string{"box:B-12"}})
	saveFigure(t, store, figure.Figure{ID: "3", OwnerID: "u1", Name: "Luka", Location: "Shelf 2"})

	find := func(term string) []string {
		figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
			Terms: []string{term},
			Fields: []string{
				db.FieldName, db.FieldManufacturer, db.FieldScale,
				db.FieldLocation, db.FieldBoxNumber,
			},
			Mode: db.MatchSubstring,
		}, 10)
		require.NoError(t, err)
		return ids(figs)
	}

	assert.Equal(t, []string{"1"}, find("smile"))
	assert.Equal(t, []string{"2"}, find("b-1"))
	assert.Equal(t, []string{"3"}, find("shelf"))
}

func TestStore_FindFiltered_AllTermsRequired(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "gsc", OwnerID: "u1", Name: "Miku", Manufacturer: "Good Smile Company"})
	saveFigure(t, store, figure.Figure{ID: "other", OwnerID: "u1", Name: "Good Boy", Manufacturer: "Other"})

	figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
		Terms:  []string{"good", "smile"},
		Fields: []string{db.FieldName, db.FieldManufacturer},
		Mode:   db.MatchSubstring,
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"gsc"}, ids(figs))
}

func TestStore_FindFiltered_EscapesWildcards(t *testing.T) {
	store := setupTestStore(t)

	saveFigure(t, store, figure.Figure{ID: "1", OwnerID: "u1", Name: "100% Miku"})
	saveFigure(t, store, figure.Figure{ID: "2", OwnerID: "u1", Name: "1000 Miku"})
	saveFigure(t, store, figure.Figure{ID: "3", OwnerID: "u1", Name: "snake_case"})
	saveFigure(t, store, figure.Figure{ID: "4", OwnerID: "u1", Name: "snakeXcase"})

	find := func(term string) []string {
		figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
			Terms: []string{term}, Fields: []string{db.FieldName}, Mode: db.MatchSubstring,
		}, 10)
		require.NoError(t, err)
		return ids(figs)
	}

	assert.Equal(t, []string{"1"}, find("0%"))
	assert.Equal(t, []string{"3"}, find("e_c"))
}

func TestStore_FindFiltered_Limit(t *testing.T) {
	store := setupTestStore(t)

	for _, id := range []string{"a", "b", "c", "d"} {
		saveFigure(t, store, figure.Figure{ID: id, OwnerID: "u1", Name: "Saber " + id})
	}

	figs, err := store.FindFiltered(context.Background(), "u1", db.Predicate{
		Terms: []string{"saber"}, Fields: []string{db.FieldName}, Mode: db.MatchSubstring,
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(figs))
}

func TestStore_FindFiltered_Validation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.FindFiltered(ctx, "", db.Predicate{Terms: []string{"x"}, Fields: []string{db.FieldName}}, 10)
	assert.ErrorIs(t, err, domain.ErrOwnerRequired)

	_, err = store.FindFiltered(ctx, "u1", db.Predicate{Terms: []string{"x"}, Fields: []string{"owner_id"}}, 10)
	assert.Error(t, err, "unknown column must be rejected")

	_, err = store.FindFiltered(ctx, "u1", db.Predicate{Terms: []string{"  "}, Fields: []string{db.FieldName}}, 10)
	assert.Error(t, err)
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figdex.db")

	first, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(path)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, second.Ping(context.Background()))
	assert.Equal(t, path, second.Path())
}

func TestStore_SaveOverOtherOwnerConflicts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saveFigure(t, store, figure.Figure{ID: "f1", OwnerID: "u1", Name: "Saber"})

	err := store.Save(ctx, &figure.Figure{ID: "f1", OwnerID: "u2", Name: "Rin"})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := store.Get(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "Saber", got.Name)
}

func TestStore_InMemory(t *testing.T) {
	store, err := NewStore(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	saveFigure(t, store, figure.Figure{ID: "f1", OwnerID: "u1", Name: "Saber"})
	got, err := store.Get(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, "Saber", got.Name)
}
