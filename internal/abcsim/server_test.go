package abcsim

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postUpload(t *testing.T, handler http.Handler, target string, payload map[string]any) map[string]string {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("upload expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestUploadTokenIsDeterministic(t *testing.T) {
	handler := NewServer(ModeSuccess, nil).Handler()
	payload := map[string]any{
		"student_name":  "Priya Sharma",
		"apaar_id":      "2023-DEL-0042",
		"credits":       4,
		"internship_id": "s-1",
	}

	first := postUpload(t, handler, "/api/v2/credits/upload", payload)
	second := postUpload(t, handler, "/api/v2/credits/upload", payload)

	if !strings.HasPrefix(first["abc_token"], "ABC-TOK-") {
		t.Fatalf("token = %q", first["abc_token"])
	}
	if len(first["abc_token"]) != len("ABC-TOK-")+12 {
		t.Fatalf("token length = %d", len(first["abc_token"]))
	}
	if first["abc_token"] != second["abc_token"] {
		t.Fatalf("identical payloads produced %q and %q", first["abc_token"], second["abc_token"])
	}
	if first["status"] != "uploaded" {
		t.Fatalf("status = %q", first["status"])
	}
}

func TestUploadModeSwitch(t *testing.T) {
	handler := NewServer(ModeSuccess, nil).Handler()
	payload := map[string]any{"internship_id": "s-2"}

	pending := postUpload(t, handler, "/api/v2/credits/upload?mode=pending", payload)
	if pending["status"] != "pending" {
		t.Fatalf("pending status = %q", pending["status"])
	}

	errored := postUpload(t, handler, "/api/v2/credits/upload?mode=error", payload)
	if errored["status"] != "error" {
		t.Fatalf("error status = %q", errored["status"])
	}
}

func TestStatusLookup(t *testing.T) {
	handler := NewServer(ModeSuccess, nil).Handler()
	uploaded := postUpload(t, handler, "/api/v2/credits/upload", map[string]any{"internship_id": "s-3"})

	req := httptest.NewRequest(http.MethodGet, "/api/v2/credits/status/"+uploaded["abc_token"], nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("status expected 200, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v2/credits/status/ABC-TOK-nope", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("unknown token expected 404, got %d", res.Code)
	}
}

func TestUploadRejectsBadJSON(t *testing.T) {
	handler := NewServer(ModeSuccess, nil).Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v2/credits/upload", strings.NewReader("{not json"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
