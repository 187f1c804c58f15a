package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/praktiki/internship-credit-portal/internal/core/ports"
)

func (rt *Router) mentorLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	token, err := rt.auth.MentorLogin(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (rt *Router) reviewQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.requireMentor(r); err != nil {
		writeError(w, err)
		return
	}

	records, err := rt.reviews.ReviewQueue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(records),
		"submissions": records,
	})
}

// mentorReview handles POST /v1/mentor/submissions/{id}/review.
func (rt *Router) mentorReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if err := rt.requireMentor(r); err != nil {
		writeError(w, err)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/mentor/submissions/")
	id, ok := strings.CutSuffix(rest, "/review")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var req struct {
		CustomKeywords []string `json:"custom_keywords"`
		PushToABC      bool     `json:"push_to_abc"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	record, err := rt.reviews.Review(r.Context(), ports.ReviewRequest{
		SubmissionID:   id,
		CustomKeywords: req.CustomKeywords,
		PushToABC:      req.PushToABC,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordMentorReview(serviceName)
		if req.PushToABC && record.ABCStatus != "" {
			rt.metrics.RecordABCPush(serviceName, record.ABCStatus)
		}
	}

	writeJSON(w, http.StatusOK, record)
}
