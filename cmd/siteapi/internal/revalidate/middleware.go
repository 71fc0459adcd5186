package revalidate

import (
	"bytes"
	"log"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// CacheStatusHeader reports HIT or MISS on cached routes.
const CacheStatusHeader = "X-Cache"

// ReadThrough serves public GET responses from cache and fills it on a miss.
// Only 200 responses for requests without a query string are stored, and
// never one marked Cache-Control: no-store. Cache failures are logged and the
// request is served uncached.
func ReadThrough(cache PageCache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cache == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if (r.Method != http.MethodGet && r.Method != http.MethodHead) || r.URL.RawQuery != "" {
				next.ServeHTTP(w, r)
				return
			}
			path := r.URL.Path

			page, found, err := cache.Get(r.Context(), path)
			if err != nil {
				log.Printf("revalidate: cache lookup %s failed: %v", path, err)
			}
			if found {
				w.Header().Set("Content-Type", page.ContentType)
				w.Header().Set(CacheStatusHeader, "HIT")
				w.WriteHeader(http.StatusOK)
				if r.Method == http.MethodGet {
					_, _ = w.Write(page.Body)
				}
				return
			}

			renderedAt := time.Now()
			var body bytes.Buffer
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)
			ww.Header().Set(CacheStatusHeader, "MISS")
			next.ServeHTTP(ww, r)

			if r.Method != http.MethodGet || ww.Status() != http.StatusOK {
				return
			}
			if strings.Contains(ww.Header().Get("Cache-Control"), "no-store") {
				return
			}
			stored := Page{Body: body.Bytes(), ContentType: ww.Header().Get("Content-Type")}
			if err := cache.Put(r.Context(), path, stored, renderedAt, ttl); err != nil {
				log.Printf("revalidate: cache fill %s failed: %v", path, err)
			}
		})
	}
}
