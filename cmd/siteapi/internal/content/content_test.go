package content

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/migrations"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)

	validator, err := NewSchemaValidator(0)
	require.NoError(t, err)
	return NewStore(repository.NewBunContentRepository(db), validator)
}

func roundTrip[T Content](t *testing.T, store *Store, section Section[T], value T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, section.Write(ctx, store, value))

	got, found, err := section.Read(ctx, store)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, got)
}

func TestSections_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	roundTrip(t, store, HeroSection, Hero{Title: "Live beautifully", Subtitle: "Design studio", CTAText: "Call", CTALink: "/contact", BackgroundImageURL: "https://cdn.example.com/hero.jpg"})
	roundTrip(t, store, AboutSection, About{Title: "About", Description: "Since 2009", ImageURL: "a.jpg", YearsExperience: 15, Values: []string{"Craft", "Honesty"}})
	roundTrip(t, store, ContactInfoSection, ContactInfo{Phone: "+91 98765 43210", Email: "hello@example.com", Address: "12 MG Road", WhatsAppNumber: "919876543210", BusinessHours: "Mon-Sat 10-7", MapEmbedURL: "https://maps.example.com/x"})
	roundTrip(t, store, FooterSection, Footer{Tagline: "Spaces that feel like you", Copyright: "2026", InstagramURL: "https://instagram.com/x"})
	roundTrip(t, store, WhyChooseUsSection, WhyChooseUs{Title: "Why us", Reasons: []Reason{{Title: "On time", Description: "Always", Icon: "clock"}, {Title: "Warranty", Icon: "shield"}}})
	roundTrip(t, store, ProjectStatsSection, ProjectStats{ProjectsCompleted: 250, HappyClients: 200, YearsExperience: 15, CitiesServed: 4})
	roundTrip(t, store, ServiceHighlightsSection, ServiceHighlights{Highlights: []string{"Modular kitchens", "Wardrobes", "False ceilings"}})
}

func TestSection_ReadMissingReturnsDefaults(t *testing.T) {
	store := newTestStore(t)

	hero, found, err := HeroSection.Read(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, HeroSection.Defaults(), hero)

	doc, found, err := store.Read(context.Background(), "hero")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)
}

func TestSection_TolerantDecode(t *testing.T) {
	stats := func(doc Document) Content { return ProjectStatsSection.decode(doc) }
	why := func(doc Document) Content { return WhyChooseUsSection.decode(doc) }
	defaultReasons := WhyChooseUsSection.Defaults().Reasons

	tests := []struct {
		name   string
		decode func(Document) Content
		doc    Document
		want   Content
	}{
		{
			name:   "missing fields keep defaults",
			decode: stats,
			doc:    Document{"happy_clients": float64(12)},
			want:   ProjectStats{HappyClients: 12},
		},
		{
			name:   "numeric strings are coerced",
			decode: stats,
			doc:    Document{"projects_completed": "250", "cities_served": 3},
			want:   ProjectStats{ProjectsCompleted: 250, CitiesServed: 3},
		},
		{
			name:   "bad field does not fail the read",
			decode: stats,
			doc:    Document{"projects_completed": "lots", "happy_clients": float64(7)},
			want:   ProjectStats{HappyClients: 7},
		},
		{
			name:   "unknown fields are ignored",
			decode: stats,
			doc:    Document{"legacy_counter": 3, "years_experience": float64(9)},
			want:   ProjectStats{YearsExperience: 9},
		},
		{
			name:   "scalar where a list belongs keeps the default list",
			decode: why,
			doc:    Document{"title": "Why us", "reasons": "oops"},
			want:   WhyChooseUs{Title: "Why us", Reasons: defaultReasons},
		},
		{
			name:   "list with a bad element keeps the default list",
			decode: why,
			doc: Document{"reasons": []any{
				map[string]any{"title": "Quality", "description": "Good materials"},
				"oops",
			}},
			want: WhyChooseUs{Title: "Why choose us", Reasons: defaultReasons},
		},
		{
			name:   "well formed list replaces the default",
			decode: why,
			doc: Document{"reasons": []any{
				map[string]any{"title": "Quality", "description": "Good materials", "icon": "star"},
			}},
			want: WhyChooseUs{Title: "Why choose us", Reasons: []Reason{{Title: "Quality", Description: "Good materials", Icon: "star"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decode(tt.doc))
		})
	}
}

func TestSection_OlderShapeKeepsDefaults(t *testing.T) {
	// A hero stored before cta fields existed.
	hero := HeroSection.decode(Document{"title": "Old title"})
	assert.Equal(t, "Old title", hero.Title)
	assert.Equal(t, HeroSection.Defaults().CTAText, hero.CTAText)
}

func TestDecode_TaggedUnion(t *testing.T) {
	c := Decode(KeyServiceHighlights, Document{"highlights": []any{"a", "b"}})
	highlights, ok := c.(ServiceHighlights)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, highlights.Highlights)

	c = Decode("seo_banner", Document{"x": 1})
	unknown, ok := c.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "seo_banner", unknown.SectionKey())
	assert.Equal(t, Document{"x": 1}, unknown.Document)

	for _, key := range Keys {
		assert.Equal(t, key, Decode(key, Document{}).SectionKey())
	}
}

func TestUnknown_JSONShape(t *testing.T) {
	raw, err := json.Marshal(Decode("seo_banner", Document{"headline": "Hello"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"seo_banner","content":{"headline":"Hello"}}`, string(raw))
}

func TestStore_WriteValidates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Write(ctx, KeyServiceHighlights, Document{"highlights": "not a list"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, KeyServiceHighlights, schemaErr.Key)
	assert.Equal(t, "$.highlights", schemaErr.Path)

	// Nothing was written.
	_, found, err := store.Read(ctx, KeyServiceHighlights)
	require.NoError(t, err)
	assert.False(t, found)

	// Keys without a schema are stored as-is.
	require.NoError(t, store.Write(ctx, "seo_banner", Document{"anything": true}))
}

func TestStore_LastWriterWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, KeyFooter, Document{"tagline": "first", "copyright": "2025"}))
	require.NoError(t, store.Write(ctx, KeyFooter, Document{"tagline": "second"}))

	doc, found, err := store.Read(ctx, KeyFooter)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Document{"tagline": "second"}, doc)
}

type failingRepo struct {
	repository.ContentRepository
}

func (failingRepo) Get(context.Context, string) (*models.ContentSection, error) {
	return nil, errors.New("connection reset")
}

func TestSection_ReadErrorIsDistinctFromMissing(t *testing.T) {
	store := NewStore(failingRepo{}, nil)

	hero, found, err := HeroSection.Read(context.Background(), store)
	assert.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, HeroSection.Defaults(), hero)
}

func TestSchemaValidator(t *testing.T) {
	v, err := NewSchemaValidator(2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		key     string
		doc     Document
		wantErr bool
	}{
		{"valid highlights", KeyServiceHighlights, Document{"highlights": []string{"a"}}, false},
		{"empty highlight item", KeyServiceHighlights, Document{"highlights": []string{""}}, true},
		{"hero needs title", KeyHero, Document{"subtitle": "x"}, true},
		{"stats must be integers", KeyProjectStats, Document{"happy_clients": "many"}, true},
		{"negative stat", KeyProjectStats, Document{"happy_clients": -1}, true},
		{"typo field", KeyFooter, Document{"taglin": "x"}, true},
		{"reason without title", KeyWhyChooseUs, Document{"reasons": []any{map[string]any{"icon": "x"}}}, true},
		{"no schema", "seo_banner", Document{"x": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.key, tt.doc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.True(t, v.HasSchema(KeyHero))
	assert.False(t, v.HasSchema("seo_banner"))
}
