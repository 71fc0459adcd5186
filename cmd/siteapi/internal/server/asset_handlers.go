package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/assets"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
)

// Memory kept for multipart parsing before spilling to disk.
const multipartMemory = 8 << 20

// HandleAssetUpload accepts a multipart "file" field and answers 201 with the
// stored key and public URL.
func HandleAssetUpload(svc *assets.Service, perms *auth.Permissions, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := permit(w, r, perms, auth.AssetsObject, auth.ActionWrite); !ok {
			return
		}
		if svc == nil {
			writeError(w, http.StatusServiceUnavailable, "asset storage is not configured")
			return
		}
		if maxBytes > 0 {
			// Leave room for the multipart envelope; the service enforces the file cap.
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
		}

		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, assets.ErrTooLarge.Error())
				return
			}
			writeError(w, http.StatusBadRequest, "expected a multipart upload")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		asset, err := svc.Upload(r.Context(), assets.File{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			switch {
			case errors.Is(err, assets.ErrUnsupportedType):
				writeError(w, http.StatusUnsupportedMediaType, err.Error())
			case errors.Is(err, assets.ErrTooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			case errors.Is(err, assets.ErrUploadRejected):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				log.Printf("asset upload failed: %v", err)
				writeError(w, http.StatusBadGateway, err.Error())
			}
			return
		}
		writeJSON(w, http.StatusCreated, asset)
	}
}

// HandleAssetDelete removes an uploaded asset by key.
func HandleAssetDelete(svc *assets.Service, perms *auth.Permissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := permit(w, r, perms, auth.AssetsObject, auth.ActionDelete); !ok {
			return
		}
		if svc == nil {
			writeError(w, http.StatusServiceUnavailable, "asset storage is not configured")
			return
		}
		key := chi.URLParam(r, "key")
		if err := svc.Delete(r.Context(), key); err != nil {
			if errors.Is(err, assets.ErrInvalidKey) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Printf("asset delete failed: %v", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
