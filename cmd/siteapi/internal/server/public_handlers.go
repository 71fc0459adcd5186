package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/mutation"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// Number of homepage records of each kind.
const homeLimit = 6

// SectionResponse is a typed section as served to the site.
type SectionResponse struct {
	Key     string          `json:"key"`
	Found   bool            `json:"found"`
	Content content.Content `json:"content"`
}

// HomeResponse carries everything the landing page renders.
type HomeResponse struct {
	Hero              content.Hero              `json:"hero"`
	ServiceHighlights content.ServiceHighlights `json:"service_highlights"`
	ProjectStats      content.ProjectStats      `json:"project_stats"`
	WhyChooseUs       content.WhyChooseUs       `json:"why_choose_us"`
	Testimonials      []models.Testimonial      `json:"testimonials"`
	Projects          []models.Project          `json:"projects"`
	Services          []models.Service          `json:"services"`
}

// readSection reads key and decodes it, falling back to defaults. A store
// error is logged and reported as degraded so the response is not cached.
func readSection(ctx context.Context, store *content.Store, key string) (c content.Content, found, degraded bool) {
	doc, found, err := store.Read(ctx, key)
	if err != nil {
		log.Printf("content read failed for %s, serving defaults: %v", key, err)
		return content.Decode(key, nil), false, true
	}
	return content.Decode(key, doc), found, false
}

// readTyped reads one typed section through its accessor.
func readTyped[T content.Content](ctx context.Context, store *content.Store, section content.Section[T], degraded *bool) T {
	v, _, err := section.Read(ctx, store)
	if err != nil {
		log.Printf("content read failed for %s, serving defaults: %v", section.Key, err)
		*degraded = true
	}
	return v
}

// HandleSection serves GET /api/site/sections/{key}.
// Known keys always answer, with defaults when nothing is stored.
func HandleSection(store *content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		c, found, degraded := readSection(r.Context(), store, key)
		if !found && !degraded && !content.Known(key) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("section %q not found", key))
			return
		}
		if degraded {
			w.Header().Set("Cache-Control", "no-store")
		}
		writeJSON(w, http.StatusOK, SectionResponse{Key: key, Found: found, Content: c})
	}
}

// HandleHome serves GET /api/site/home.
func HandleHome(store *content.Store, records mutation.Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var degraded bool
		resp := HomeResponse{
			Hero:              readTyped(ctx, store, content.HeroSection, &degraded),
			ServiceHighlights: readTyped(ctx, store, content.ServiceHighlightsSection, &degraded),
			ProjectStats:      readTyped(ctx, store, content.ProjectStatsSection, &degraded),
			WhyChooseUs:       readTyped(ctx, store, content.WhyChooseUsSection, &degraded),
		}

		var err error
		if resp.Testimonials, err = records.Testimonials.List(ctx, repository.ListOptions{Flag: "show_on_homepage", Limit: homeLimit}); err != nil {
			writeReadError(w, err)
			return
		}
		if resp.Projects, err = records.Projects.List(ctx, repository.ListOptions{Flag: "featured", Limit: homeLimit}); err != nil {
			writeReadError(w, err)
			return
		}
		if resp.Services, err = records.Services.List(ctx, repository.ListOptions{Flag: "published"}); err != nil {
			writeReadError(w, err)
			return
		}

		if degraded {
			w.Header().Set("Cache-Control", "no-store")
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleRecordList serves GET /api/site/<kind>. Query parameters: flag
// (one of the table's boolean columns) and limit. Services are always
// restricted to published rows.
func HandleRecordList(records mutation.Records, kind mutation.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := listOptions(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if kind == mutation.KindServices {
			opts.Flag = "published"
		}

		list, err := listRecords(r.Context(), records, kind, opts)
		if err != nil {
			writeReadError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func listOptions(r *http.Request) (repository.ListOptions, error) {
	q := r.URL.Query()
	opts := repository.ListOptions{Flag: q.Get("flag")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, nil
}

// listRecords lists one kind through its typed repository.
func listRecords(ctx context.Context, records mutation.Records, kind mutation.Kind, opts repository.ListOptions) (any, error) {
	switch kind {
	case mutation.KindTestimonials:
		return records.Testimonials.List(ctx, opts)
	case mutation.KindVideos:
		return records.Videos.List(ctx, opts)
	case mutation.KindProcessSteps:
		return records.ProcessSteps.List(ctx, opts)
	case mutation.KindServices:
		return records.Services.List(ctx, opts)
	case mutation.KindProjects:
		return records.Projects.List(ctx, opts)
	}
	return nil, fmt.Errorf("list %s: %w", kind, repository.ErrNotFound)
}

// getRecord fetches one record of kind.
func getRecord(ctx context.Context, records mutation.Records, kind mutation.Kind, id string) (any, error) {
	switch kind {
	case mutation.KindTestimonials:
		return records.Testimonials.GetByID(ctx, id)
	case mutation.KindVideos:
		return records.Videos.GetByID(ctx, id)
	case mutation.KindProcessSteps:
		return records.ProcessSteps.GetByID(ctx, id)
	case mutation.KindServices:
		return records.Services.GetByID(ctx, id)
	case mutation.KindProjects:
		return records.Projects.GetByID(ctx, id)
	}
	return nil, fmt.Errorf("get %s: %w", kind, repository.ErrNotFound)
}
