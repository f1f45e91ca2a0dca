package httpapi

import (
	"errors"
	"net/http"

	"github.com/ADevelopere/storagegate/internal/common"
	"github.com/ADevelopere/storagegate/internal/server/storage"
)

// handleUpload claims the token and streams the body into the blob store.
// PUT /storage/upload/{tokenId}
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	req := &storage.UploadRequest{
		TokenID:       r.PathValue("tokenId"),
		ContentType:   r.Header.Get("Content-Type"),
		ContentMD5:    r.Header.Get("Content-MD5"),
		ContentLength: r.ContentLength,
		Body:          r.Body,
	}

	result, err := s.storage.Upload(r.Context(), req)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrTokenInvalid):
		writeError(w, http.StatusForbidden, "invalid upload token")
	case errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusForbidden, "upload token expired")
	case errors.Is(err, common.ErrTokenClaimed):
		writeError(w, http.StatusForbidden, "upload token already used (claimed)")
	case errors.Is(err, storage.ErrContentTypeMismatch):
		writeError(w, http.StatusBadRequest, "content-type mismatch with token")
	case errors.Is(err, storage.ErrMD5Required):
		writeError(w, http.StatusBadRequest, "content-md5 header missing or invalid; a base64 md5 digest is required")
	case errors.Is(err, storage.ErrLengthRequired):
		writeError(w, http.StatusBadRequest, "content-length header is required")
	case errors.Is(err, storage.ErrSizeExceeded):
		writeError(w, http.StatusRequestEntityTooLarge, "payload size exceeds declared file size")
	case errors.Is(err, common.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, "invalid file path (traversal rejected)")
	case errors.Is(err, storage.ErrMD5Mismatch):
		writeError(w, http.StatusBadRequest, "md5 hash mismatch")
	default:
		s.log.Error(r.Context(), "upload failed", "token_id", r.PathValue("tokenId"), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
