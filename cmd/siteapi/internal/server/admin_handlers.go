package server

import (
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/mutation"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// DashboardResponse summarises the console for the signed-in administrator.
type DashboardResponse struct {
	User     DashboardUser   `json:"user"`
	Sections map[string]bool `json:"sections"`
	Counts   map[string]int  `json:"counts"`
}

// DashboardUser is the signed-in administrator.
type DashboardUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// HandleDashboard serves the admin home.
func HandleDashboard(store *content.Store, records mutation.Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusForbidden, "administrator profile required")
			return
		}

		stored, err := store.ReadAll(r.Context())
		if err != nil {
			writeReadError(w, err)
			return
		}
		resp := DashboardResponse{
			User: DashboardUser{
				ID:       principal.Identity.ID,
				Email:    principal.Identity.Email,
				FullName: principal.Profile.FullName,
				Role:     principal.Profile.Role,
			},
			Sections: make(map[string]bool, len(content.Keys)),
			Counts:   make(map[string]int, len(mutation.RecordKinds)),
		}
		for _, key := range content.Keys {
			_, resp.Sections[key] = stored[key]
		}
		for _, kind := range mutation.RecordKinds {
			n, err := countRecords(r, records, kind)
			if err != nil {
				writeReadError(w, err)
				return
			}
			resp.Counts[string(kind)] = n
		}

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
	}
}

func countRecords(r *http.Request, records mutation.Records, kind mutation.Kind) (int, error) {
	ctx := r.Context()
	opts := repository.ListOptions{}
	switch kind {
	case mutation.KindTestimonials:
		l, err := records.Testimonials.List(ctx, opts)
		return len(l), err
	case mutation.KindVideos:
		l, err := records.Videos.List(ctx, opts)
		return len(l), err
	case mutation.KindProcessSteps:
		l, err := records.ProcessSteps.List(ctx, opts)
		return len(l), err
	case mutation.KindServices:
		l, err := records.Services.List(ctx, opts)
		return len(l), err
	case mutation.KindProjects:
		l, err := records.Projects.List(ctx, opts)
		return len(l), err
	}
	return 0, nil
}

// HandleAdminSections lists every known section with its current value.
func HandleAdminSections(store *content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]SectionResponse, 0, len(content.Keys))
		for _, key := range content.Keys {
			c, found, degraded := readSection(r.Context(), store, key)
			if degraded {
				writeError(w, http.StatusInternalServerError, "failed to read content")
				return
			}
			out = append(out, SectionResponse{Key: key, Found: found, Content: c})
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleAdminSection serves one section to the console editor.
func HandleAdminSection(store *content.Store, perms *auth.Permissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if _, ok := permit(w, r, perms, auth.SectionObject(key), auth.ActionRead); !ok {
			return
		}
		c, found, degraded := readSection(r.Context(), store, key)
		if degraded {
			writeError(w, http.StatusInternalServerError, "failed to read content")
			return
		}
		if !found && !content.Known(key) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("section %q not found", key))
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, SectionResponse{Key: key, Found: found, Content: c})
	}
}

// HandleSectionWrite replaces a section from a form post or a JSON document
// and redirects back to the section view.
func HandleSectionWrite(pipeline *mutation.Pipeline, perms *auth.Permissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if _, ok := permit(w, r, perms, auth.SectionObject(key), auth.ActionWrite); !ok {
			return
		}

		m := mutation.Mutation{Kind: mutation.KindSection, Op: mutation.OpUpsert, Key: key}
		if isJSON(r) {
			var doc content.Document
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON document")
				return
			}
			if doc == nil {
				doc = content.Document{}
			}
			m.Document = doc
		} else {
			if err := r.ParseForm(); err != nil {
				writeError(w, http.StatusBadRequest, "invalid form")
				return
			}
			m.Fields = r.PostForm
		}

		runMutation(w, r, pipeline, m)
	}
}

// HandleAdminRecordList lists every record of a kind, unfiltered.
func HandleAdminRecordList(records mutation.Records, perms *auth.Permissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := recordKind(w, r)
		if !ok {
			return
		}
		if _, ok := permit(w, r, perms, auth.RecordsObject(string(kind)), auth.ActionRead); !ok {
			return
		}
		opts, err := listOptions(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		list, err := listRecords(r.Context(), records, kind, opts)
		if err != nil {
			writeReadError(w, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, list)
	}
}

// HandleAdminRecord serves one record to the console editor.
func HandleAdminRecord(records mutation.Records, perms *auth.Permissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := recordKind(w, r)
		if !ok {
			return
		}
		if _, ok := permit(w, r, perms, auth.RecordsObject(string(kind)), auth.ActionRead); !ok {
			return
		}
		rec, err := getRecord(r.Context(), records, kind, chi.URLParam(r, "id"))
		if err != nil {
			writeReadError(w, err)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, rec)
	}
}

// HandleRecordCreate inserts a record from a form post.
func HandleRecordCreate(pipeline *mutation.Pipeline, perms *auth.Permissions) http.HandlerFunc {
	return recordMutation(pipeline, perms, mutation.OpCreate, auth.ActionWrite)
}

// HandleRecordUpdate replaces a record from a form post.
func HandleRecordUpdate(pipeline *mutation.Pipeline, perms *auth.Permissions) http.HandlerFunc {
	return recordMutation(pipeline, perms, mutation.OpUpdate, auth.ActionWrite)
}

// HandleRecordDelete deletes a record.
func HandleRecordDelete(pipeline *mutation.Pipeline, perms *auth.Permissions) http.HandlerFunc {
	return recordMutation(pipeline, perms, mutation.OpDelete, auth.ActionDelete)
}

func recordMutation(pipeline *mutation.Pipeline, perms *auth.Permissions, op mutation.Op, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, ok := recordKind(w, r)
		if !ok {
			return
		}
		if _, ok := permit(w, r, perms, auth.RecordsObject(string(kind)), action); !ok {
			return
		}

		m := mutation.Mutation{Kind: kind, Op: op, ID: chi.URLParam(r, "id")}
		if op != mutation.OpDelete {
			if err := r.ParseForm(); err != nil {
				writeError(w, http.StatusBadRequest, "invalid form")
				return
			}
			m.Fields = r.PostForm
		}
		runMutation(w, r, pipeline, m)
	}
}

// runMutation runs m and answers with a 303 to the listing view, or with the
// error payload so the form stays populated.
func runMutation(w http.ResponseWriter, r *http.Request, pipeline *mutation.Pipeline, m mutation.Mutation) {
	ack, err := pipeline.Mutate(r.Context(), m)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	log.Printf("%s %s %s%s committed, invalidated %v", ack.Op, ack.Kind, ack.Key, ack.ID, ack.Paths)
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, ack.Location, http.StatusSeeOther)
}

func recordKind(w http.ResponseWriter, r *http.Request) (mutation.Kind, bool) {
	raw := chi.URLParam(r, "kind")
	kind, ok := mutation.ParseKind(raw)
	if !ok || kind == mutation.KindSection {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown entity kind %q", raw))
		return "", false
	}
	return kind, true
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
