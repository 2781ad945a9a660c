package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/media-io/s3-signer/internal/upload"
)

type presignedURLResponse struct {
	URL string `json:"url"`
}

type createUploadResponse struct {
	UploadID string `json:"uploadId"`
}

type partUploadResponse struct {
	PresignedURL string `json:"presignedUrl"`
}

// Body of POST /api/multipart-upload/{uploadID}: a tagged union whose
// discriminator selects abortion or completion.
type abortOrCompleteBody struct {
	Action string          `json:"action"`
	Parts  []completedPart `json:"parts"`
}

type completedPart struct {
	Number int32  `json:"number"`
	ETag   string `json:"etag"`
}

const (
	actionAbort    = "Abort"
	actionComplete = "Complete"
)

// objectParams extracts the bucket and path query parameters common to
// every single-object route. Missing values reject the request before any
// backend call.
func objectParams(w http.ResponseWriter, r *http.Request) (bucket, key string, ok bool) {
	bucket = r.URL.Query().Get("bucket")
	key = r.URL.Query().Get("path")
	if bucket == "" || key == "" {
		writeUnprocessable(w, "bucket and path query parameters are required")
		return "", "", false
	}
	return bucket, key, true
}

// GET /api/object?bucket&path → 302 to a presigned GET URL.
func (s *Server) handleGetObjectURL(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := objectParams(w, r)
	if !ok {
		return
	}

	url, err := s.signer.SignGet(r.Context(), bucket, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRedirect(w, url)
}

// POST /api/objects?bucket&path → 302 to a presigned PUT URL.
func (s *Server) handleCreateObjectURL(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := objectParams(w, r)
	if !ok {
		return
	}

	url, err := s.signer.SignPut(r.Context(), bucket, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRedirect(w, url)
}

// GET /api/objects?bucket&prefix? → JSON listing of one directory level.
func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	bucket := r.URL.Query().Get("bucket")
	if bucket == "" {
		writeUnprocessable(w, "bucket query parameter is required")
		return
	}
	prefix := r.URL.Query().Get("prefix")

	entries, err := s.lister.List(r.Context(), bucket, prefix)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// POST /api/multipart-upload?bucket&path → {uploadId}.
func (s *Server) handleCreateUpload(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := objectParams(w, r)
	if !ok {
		return
	}

	uploadID, err := s.uploads.Create(r.Context(), bucket, key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createUploadResponse{UploadID: uploadID})
}

// GET /api/multipart-upload/{uploadID}/part/{partNumber}?bucket&path →
// {presignedUrl}.
func (s *Server) handlePartUploadURL(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := objectParams(w, r)
	if !ok {
		return
	}

	uploadID := chi.URLParam(r, "uploadID")
	partNumber, err := strconv.ParseInt(chi.URLParam(r, "partNumber"), 10, 32)
	if err != nil {
		writeUnprocessable(w, "part number must be an integer")
		return
	}

	url, err := s.uploads.PartURL(r.Context(), bucket, key, uploadID, int32(partNumber))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, partUploadResponse{PresignedURL: url})
}

// POST /api/multipart-upload/{uploadID}?bucket&path with an action-tagged
// body → abort or complete the upload, 200 empty on success.
func (s *Server) handleAbortOrCompleteUpload(w http.ResponseWriter, r *http.Request) {
	bucket, key, ok := objectParams(w, r)
	if !ok {
		return
	}
	uploadID := chi.URLParam(r, "uploadID")

	var body abortOrCompleteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeUnprocessable(w, "request body must be valid JSON")
		return
	}

	switch body.Action {
	case actionAbort:
		if err := s.uploads.Abort(r.Context(), bucket, key, uploadID); err != nil {
			writeError(w, err)
			return
		}
	case actionComplete:
		parts := make([]upload.Part, len(body.Parts))
		for i, p := range body.Parts {
			parts[i] = upload.Part{Number: p.Number, ETag: p.ETag}
		}
		if err := s.uploads.Complete(r.Context(), bucket, key, uploadID, parts); err != nil {
			writeError(w, err)
			return
		}
	default:
		writeUnprocessable(w, "action must be either Abort or Complete")
		return
	}

	w.WriteHeader(http.StatusOK)
}
