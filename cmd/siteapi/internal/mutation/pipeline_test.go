package mutation

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/migrations"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// recordingInvalidator captures every Invalidate call.
type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
	return r.err
}

func (r *recordingInvalidator) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fixture struct {
	pipeline *Pipeline
	store    *content.Store
	records  Records
	inv      *recordingInvalidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := bunx.NewDB(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)

	validator, err := content.NewSchemaValidator(0)
	require.NoError(t, err)
	store := content.NewStore(repository.NewBunContentRepository(db), validator)

	records := Records{
		Testimonials: repository.NewBunRecordRepository[models.Testimonial](db),
		Videos:       repository.NewBunRecordRepository[models.Video](db),
		ProcessSteps: repository.NewBunRecordRepository[models.ProcessStep](db),
		Services:     repository.NewBunRecordRepository[models.Service](db),
		Projects:     repository.NewBunRecordRepository[models.Project](db),
	}
	inv := &recordingInvalidator{}
	return &fixture{
		pipeline: NewPipeline(store, records, WithHook(InvalidateHook(inv))),
		store:    store,
		records:  records,
		inv:      inv,
	}
}

func TestPipeline_HighlightsEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ack, err := f.pipeline.Mutate(ctx, Mutation{
		Kind:   KindSection,
		Op:     OpUpsert,
		Key:    content.KeyServiceHighlights,
		Fields: url.Values{"highlights": {"Modular kitchens\n\nWardrobes\r\n  False ceilings  \n"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/admin/sections/service_highlights", ack.Location)

	got, found, err := content.ServiceHighlightsSection.Read(ctx, f.store)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"Modular kitchens", "Wardrobes", "False ceilings"}, got.Highlights)

	require.Equal(t, 1, f.inv.count())
	assert.Contains(t, f.inv.calls[0], "/api/site/home")
	assert.Contains(t, f.inv.calls[0], "/api/site/sections/service_highlights")
	assert.Contains(t, f.inv.calls[0], "/admin/sections/service_highlights")
}

func TestPipeline_DoubleDeleteInvalidatesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ack, err := f.pipeline.Mutate(ctx, Mutation{
		Kind: KindTestimonials,
		Op:   OpCreate,
		Fields: url.Values{
			"client_name": {"Asha"},
			"quote":       {"Loved the kitchen"},
			"rating":      {"5"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, ack.ID)
	require.Equal(t, 1, f.inv.count())

	del := Mutation{Kind: KindTestimonials, Op: OpDelete, ID: ack.ID}
	_, err = f.pipeline.Mutate(ctx, del)
	require.NoError(t, err)
	assert.Equal(t, 2, f.inv.count())

	_, err = f.pipeline.Mutate(ctx, del)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.NotFound())
	assert.Equal(t, 2, f.inv.count(), "failed delete must not invalidate")
}

func TestPipeline_ValidationErrorPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		m       Mutation
		field   string
		message string
	}{
		{
			name:    "missing required field",
			m:       Mutation{Kind: KindTestimonials, Op: OpCreate, Fields: url.Values{"quote": {"x"}}},
			field:   "client_name",
			message: "client name is required",
		},
		{
			name:    "rating out of range",
			m:       Mutation{Kind: KindTestimonials, Op: OpCreate, Fields: url.Values{"client_name": {"A"}, "quote": {"x"}, "rating": {"9"}}},
			field:   "rating",
			message: "rating must be at most 5",
		},
		{
			name:    "not a number",
			m:       Mutation{Kind: KindSection, Op: OpUpsert, Key: content.KeyProjectStats, Fields: url.Values{"happy_clients": {"many"}}},
			field:   "happy_clients",
			message: "happy clients must be a whole number",
		},
		{
			name:  "schema rejects document",
			m:     Mutation{Kind: KindSection, Op: OpUpsert, Key: content.KeyHero, Document: content.Document{"title": 12}},
			field: "$.title",
		},
		{
			name:  "update without id",
			m:     Mutation{Kind: KindVideos, Op: OpUpdate, Fields: url.Values{"title": {"t"}, "video_url": {"u"}}},
			field: "id",
		},
		{
			name:  "unknown section form",
			m:     Mutation{Kind: KindSection, Op: OpUpsert, Key: "banner", Fields: url.Values{}},
			field: "key",
		},
		{
			name:  "unknown kind",
			m:     Mutation{Kind: Kind("pages"), Op: OpCreate},
			field: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.Mutate(ctx, tt.m)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, ve.Message)
			}
		})
	}

	assert.Equal(t, 0, f.inv.count())
	items, err := f.records.Testimonials.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPipeline_CancelledContextDoesNotInvalidate(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Mutate(ctx, Mutation{
		Kind:   KindSection,
		Op:     OpUpsert,
		Key:    content.KeyHero,
		Fields: url.Values{"title": {"New hero"}},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.inv.count())

	_, found, err := f.store.Read(context.Background(), content.KeyHero)
	require.NoError(t, err)
	assert.False(t, found)
}

type failingRecords struct {
	repository.RecordRepository[models.Video]
	err error
}

func (f failingRecords) Create(context.Context, *models.Video) error { return f.err }

func TestPipeline_PersistenceFailureIsVerbatim(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("duplicate key value violates unique constraint")
	p := NewPipeline(f.store, Records{Videos: failingRecords{err: storeErr}}, WithHook(InvalidateHook(f.inv)))

	_, err := p.Mutate(context.Background(), Mutation{
		Kind:   KindVideos,
		Op:     OpCreate,
		Fields: url.Values{"title": {"Tour"}, "video_url": {"https://video.example.com/1"}},
	})
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, storeErr.Error(), pe.Error())
	assert.False(t, pe.NotFound())
	assert.Equal(t, 0, f.inv.count())
}

func TestPipeline_HookFailureKeepsAck(t *testing.T) {
	f := newFixture(t)
	f.inv.err = errors.New("cache unreachable")

	ack, err := f.pipeline.Mutate(context.Background(), Mutation{
		Kind:   KindSection,
		Op:     OpUpsert,
		Key:    content.KeyFooter,
		Fields: url.Values{"tagline": {"Spaces that feel like you"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/site/sections/footer", "/admin/sections/footer"}, ack.Paths)
	assert.Equal(t, 1, f.inv.count())
}

func TestPipeline_ServiceSlugAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ack, err := f.pipeline.Mutate(ctx, Mutation{
		Kind: KindServices,
		Op:   OpCreate,
		Fields: url.Values{
			"title":       {"Modular Kitchens & Wardrobes"},
			"description": {"End to end"},
			"features":    {"Soft-close\nQuartz tops"},
			"published":   {"on"},
		},
	})
	require.NoError(t, err)

	svc, err := f.records.Services.GetByID(ctx, ack.ID)
	require.NoError(t, err)
	assert.Equal(t, "modular-kitchens-wardrobes", svc.Slug)
	assert.Equal(t, []string{"Soft-close", "Quartz tops"}, svc.Features)
	assert.True(t, svc.Published)

	_, err = f.pipeline.Mutate(ctx, Mutation{
		Kind: KindServices,
		Op:   OpUpdate,
		ID:   ack.ID,
		Fields: url.Values{
			"title":       {"Kitchens"},
			"slug":        {"kitchens"},
			"description": {"Updated"},
		},
	})
	require.NoError(t, err)

	svc, err = f.records.Services.GetByID(ctx, ack.ID)
	require.NoError(t, err)
	assert.Equal(t, "kitchens", svc.Slug)
	assert.Equal(t, "Updated", svc.Description)
	assert.False(t, svc.Published)

	_, err = f.pipeline.Mutate(ctx, Mutation{
		Kind:   KindServices,
		Op:     OpUpdate,
		ID:     "018f0000-0000-7000-8000-000000000000",
		Fields: url.Values{"title": {"Ghost"}, "description": {"x"}},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, f.inv.count())
}

func TestPipeline_UncheckedFlagsStayOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		kind   Kind
		fields url.Values
		listed func() (int, error)
	}{
		{
			kind:   KindServices,
			fields: url.Values{"title": {"Turnkey Interiors"}, "description": {"Design and build"}},
			listed: func() (int, error) {
				rows, err := f.records.Services.List(ctx, repository.ListOptions{Flag: "published"})
				return len(rows), err
			},
		},
		{
			kind:   KindTestimonials,
			fields: url.Values{"client_name": {"Asha"}, "quote": {"Lovely work"}},
			listed: func() (int, error) {
				rows, err := f.records.Testimonials.List(ctx, repository.ListOptions{Flag: "show_on_homepage"})
				return len(rows), err
			},
		},
		{
			kind:   KindVideos,
			fields: url.Values{"title": {"Walkthrough"}, "video_url": {"https://example.com/v"}},
			listed: func() (int, error) {
				rows, err := f.records.Videos.List(ctx, repository.ListOptions{Flag: "featured"})
				return len(rows), err
			},
		},
		{
			kind:   KindProjects,
			fields: url.Values{"title": {"Villa"}, "category": {"residential"}, "image_url": {"https://example.com/i.jpg"}},
			listed: func() (int, error) {
				rows, err := f.records.Projects.List(ctx, repository.ListOptions{Flag: "featured"})
				return len(rows), err
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, err := f.pipeline.Mutate(ctx, Mutation{Kind: tt.kind, Op: OpCreate, Fields: tt.fields})
			require.NoError(t, err)

			n, err := tt.listed()
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestPipeline_TestimonialRatingDefaultsToFive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ack, err := f.pipeline.Mutate(ctx, Mutation{
		Kind:   KindTestimonials,
		Op:     OpCreate,
		Fields: url.Values{"client_name": {"Ravi"}, "quote": {"On time"}},
	})
	require.NoError(t, err)

	got, err := f.records.Testimonials.GetByID(ctx, ack.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.False(t, got.ShowOnHomepage)
}

func TestPipeline_SectionTextClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Mutate(ctx, Mutation{
		Kind:   KindSection,
		Op:     OpUpsert,
		Key:    content.KeyHero,
		Fields: url.Values{"title": {"Interiors"}, "subtitle": {"Bespoke homes"}},
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		fields url.Values
		want   string
	}{
		{
			name:   "submitted empty clears",
			fields: url.Values{"title": {"Interiors"}, "subtitle": {"  "}},
			want:   "",
		},
		{
			name:   "omitted falls back to default",
			fields: url.Values{"title": {"Interiors"}},
			want:   content.HeroSection.Defaults().Subtitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.Mutate(ctx, Mutation{
				Kind:   KindSection,
				Op:     OpUpsert,
				Key:    content.KeyHero,
				Fields: tt.fields,
			})
			require.NoError(t, err)

			hero, found, err := content.HeroSection.Read(ctx, f.store)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, tt.want, hero.Subtitle)
		})
	}
}
