package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

type cleanupResponse struct {
	DeletedCount int64 `json:"deletedCount"`
}

// handleCleanup is the operator-triggered purge. It carries no
// authorization of its own; the trigger is logged with the caller address.
// POST /storage/cleanup
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	s.log.Warn(r.Context(), "manual cleanup triggered", "remote_addr", r.RemoteAddr)
	s.runCleanup(w, r)
}

// handleCronCleanup is the scheduled purge, gated by the shared bearer
// secret.
// POST /cron/cleanup-signed-urls
func (s *Server) handleCronCleanup(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	secret, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || secret == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized: missing authentication token")
		return
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.CronSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.runCleanup(w, r)
}

func (s *Server) runCleanup(w http.ResponseWriter, r *http.Request) {
	n, err := s.storage.CleanupExpired(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "cleanup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, cleanupResponse{DeletedCount: n})
}
