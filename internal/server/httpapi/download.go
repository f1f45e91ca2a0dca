package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ADevelopere/storagegate/internal/common"
)

// handleDownload serves full or partial object content.
// GET /storage/files/{path...}
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")

	meta, err := s.storage.Resolve(r.Context(), path)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		s.log.Error(r.Context(), "resolving download failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if meta.IsProtected && callerID(r.Context()) == "" {
		writeError(w, http.StatusForbidden, "forbidden: authentication required")
		return
	}

	info, err := s.storage.Stat(r.Context(), meta.Path)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// registry row without backing bytes; treat like a missing file
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		s.log.Error(r.Context(), "stat failed", "path", meta.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		s.serveFull(w, r, meta.Path, meta.ContentType, info.Size)
		return
	}

	rng, err := parseRange(rangeHeader, info.Size)
	switch {
	case errors.Is(err, errRangeUnsatisfiable):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", info.Size))
		writeError(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
		return
	case errors.Is(err, errRangeMalformed):
		// a malformed Range header is ignored and the full content served
		s.serveFull(w, r, meta.Path, meta.ContentType, info.Size)
		return
	}

	rc, err := s.storage.OpenRange(r.Context(), meta.Path, rng.start, rng.length())
	if err != nil {
		s.log.Error(r.Context(), "opening range failed", "path", meta.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(rng.length(), 10))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, info.Size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn(r.Context(), "range stream interrupted", "path", meta.Path, "error", err)
	}
}

func (s *Server) serveFull(w http.ResponseWriter, r *http.Request, path, contentType string, size int64) {
	rc, err := s.storage.Open(r.Context(), path)
	if err != nil {
		s.log.Error(r.Context(), "opening object failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn(r.Context(), "stream interrupted", "path", path, "error", err)
	}
}
