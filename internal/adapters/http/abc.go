package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (rt *Router) abcLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		APAARID  string `json:"apaar_id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	token, err := rt.auth.StudentLogin(r.Context(), req.APAARID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (rt *Router) abcApprovals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	apaarID, err := rt.requireStudent(r)
	if err != nil {
		writeError(w, err)
		return
	}

	approvals, err := rt.approvals.ApprovalsForStudent(r.Context(), apaarID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"apaar_id":  apaarID,
		"count":     len(approvals),
		"approvals": approvals,
	})
}

// abcStatus is a public lookup: the token itself is the capability.
func (rt *Router) abcStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	token := strings.TrimPrefix(r.URL.Path, "/v1/abc/status/")
	if token == "" || strings.Contains(token, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "abc token is required"})
		return
	}

	approval, err := rt.approvals.ApprovalByToken(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, approval)
}
