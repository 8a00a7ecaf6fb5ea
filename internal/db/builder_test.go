package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("test-idx").
		Prefix("doc:").
		Tag("userId").
		Numeric("popularity").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "test-idx" {
		t.Errorf("name = %q, want test-idx", idx.Name)
	}
	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "userId" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want userId TAG", idx.Fields[0])
	}
	if idx.Fields[1].Name != "popularity" || idx.Fields[1].Type != IndexFieldNumeric {
		t.Errorf("field[1] = %+v, want popularity NUMERIC", idx.Fields[1])
	}
}

func TestIndexBuilder_TextAndStored(t *testing.T) {
	idx := NewIndex("figdex:idx").
		OnHash().
		Prefix("figdex:doc:").
		Text("searchText").
		TextWeighted("nameSearchable", 2).
		TagWithOpts("scaleKey", ";", true).
		Stored("figureName").
		MustBuild()

	f, ok := idx.Field("nameSearchable")
	if !ok || f.Type != IndexFieldText || f.Weight != 2 {
		t.Errorf("nameSearchable = %+v, %v", f, ok)
	}
	f, ok = idx.Field("scaleKey")
	if !ok || f.TagSeparator != ";" || !f.TagCaseSensitive {
		t.Errorf("scaleKey = %+v, %v", f, ok)
	}
	f, ok = idx.Field("figureName")
	if !ok || f.Type != IndexFieldStored {
		t.Errorf("figureName = %+v, %v", f, ok)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("unexpected field")
	}
}

func TestIndexBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*IndexDefinition, error)
		wantMsg string
	}{
		{
			name:    "empty name",
			build:   func() (*IndexDefinition, error) { return NewIndex("").Tag("t").Build() },
			wantMsg: "index name is required",
		},
		{
			name:    "invalid name",
			build:   func() (*IndexDefinition, error) { return NewIndex("bad idx").Tag("t").Build() },
			wantMsg: "invalid characters",
		},
		{
			name:    "no fields",
			build:   func() (*IndexDefinition, error) { return NewIndex("idx").Build() },
			wantMsg: "at least one field",
		},
		{
			name:    "duplicate field",
			build:   func() (*IndexDefinition, error) { return NewIndex("idx").Tag("a").Text("a").Build() },
			wantMsg: "duplicate field name: a",
		},
		{
			name:    "negative weight",
			build:   func() (*IndexDefinition, error) { return NewIndex("idx").TextWeighted("a", -1).Build() },
			wantMsg: "weight must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestIndexBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewIndex("").MustBuild()
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("figdex:idx").
		Prefix("figdex:doc:").
		Tag("userId").
		TextWeighted("nameSearchable", 2).
		Numeric("popularity").
		Stored("figureName").
		MustBuild()

	want := "FT.CREATE figdex:idx ON HASH PREFIX figdex:doc: STOPWORDS 0 SCHEMA " +
		"userId TAG nameSearchable TEXT WEIGHT 2 popularity NUMERIC"
	if got := idx.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	for _, s := range []string{"idx", "figdex:idx", "a-b_c", "X9"} {
		if !IsValidIdentifier(s) {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []string{"", "a b", "idx*", "имя"} {
		if IsValidIdentifier(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}
