package searchdoc

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/domain/figure"
	domdoc "github.com/kailas-cloud/figdex/internal/domain/searchdoc"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	putFn      func(ctx context.Context, key string, fields map[string]string) error
	putMultiFn func(ctx context.Context, items []db.DocumentItem) error
	getFn      func(ctx context.Context, key string) (map[string]string, error)
	delFn      func(ctx context.Context, key string) error
	ensureFn   func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) PutDocument(ctx context.Context, key string, fields map[string]string) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) PutDocuments(ctx context.Context, items []db.DocumentItem) error {
	if m.putMultiFn != nil {
		return m.putMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) GetDocument(ctx context.Context, key string) (map[string]string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) DeleteDocument(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, def)
	}
	return nil
}

var testKeys = Keys{Prefix: "figdex:", IndexName: "figdex:idx"}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testKeys), ms
}

func testFigure() *figure.Figure {
	return &figure.Figure{
		ID:      "f1",
		OwnerID: "u1",
		Name:    "  Hatsune Miku ",
		CompanyRoles: []figure.CompanyRole{
			{Company: "Good Smile Company", Role: "Manufacturer"},
		},
		ArtistRoles: []figure.ArtistRole{{Artist: "KEI", Role: "Illustrator"}},
		Scale:       "1/8",
		Releases: []figure.Release{
			{Barcode: "4580416940573", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
		Tags:       []string{"vocaloid", "location:Shelf A"},
		Popularity: 7,
	}
}

func testDocument() domdoc.Document {
	return domdoc.FromFigure(testFigure(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}
