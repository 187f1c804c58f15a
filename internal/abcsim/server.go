// Package abcsim is a stand-in for the Academic Bank of Credits API.
// Tokens are derived from the payload content, so replaying the same
// push always yields the same token.
package abcsim

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	ModeSuccess = "success"
	ModePending = "pending"
	ModeError   = "error"
)

type creditRecord struct {
	Token      string          `json:"abc_token"`
	Status     string          `json:"status"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

type Server struct {
	defaultMode string
	logger      *slog.Logger

	mu      sync.RWMutex
	records map[string]*creditRecord
}

func NewServer(defaultMode string, logger *slog.Logger) *Server {
	if defaultMode == "" {
		defaultMode = ModeSuccess
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		defaultMode: defaultMode,
		logger:      logger,
		records:     make(map[string]*creditRecord),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/api/v2/credits/upload", s.uploadCredits)
	mux.HandleFunc("/api/v2/credits/status/", s.creditStatus)
	return s.logRequests(mux)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) uploadCredits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	token, err := TokenFor(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payload is not canonicalizable"})
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = s.defaultMode
	}
	status := statusForMode(mode)

	raw, _ := json.Marshal(payload)
	record := &creditRecord{
		Token:      token,
		Status:     status,
		Payload:    raw,
		ReceivedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.records[token] = record
	s.mu.Unlock()

	s.logger.Info("credit upload", "abc_token", token, "status", status, "mode", mode)
	writeJSON(w, http.StatusOK, map[string]string{
		"abc_token": token,
		"status":    status,
	})
}

func (s *Server) creditStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/api/v2/credits/status/")
	if token == "" || strings.Contains(token, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	s.mu.RLock()
	record, ok := s.records[token]
	s.mu.RUnlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"abc_token": record.Token,
		"status":    record.Status,
	})
}

// TokenFor hashes the canonical (key-sorted) JSON encoding of the
// payload into the bank's token format.
func TokenFor(payload map[string]any) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return "ABC-TOK-" + hex.EncodeToString(sum[:])[:12], nil
}

func statusForMode(mode string) string {
	switch mode {
	case ModePending:
		return "pending"
	case ModeError:
		return "error"
	default:
		return "uploaded"
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
