package spacy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
)

func TestEntitiesSendsModelAndText(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entities" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"entities":[{"text":"Priya Sharma","label":"PERSON"},{"text":"TechNova","label":"ORG"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "en_core_web_md", nil)
	entities, err := client.Entities(context.Background(), "certificate text")
	if err != nil {
		t.Fatalf("Entities() error = %v", err)
	}
	if captured["model"] != "en_core_web_md" || captured["text"] != "certificate text" {
		t.Fatalf("unexpected request payload: %v", captured)
	}
	if len(entities) != 2 || entities[0] != (domain.Entity{Text: "Priya Sharma", Label: domain.EntityPerson}) {
		t.Fatalf("unexpected entities: %v", entities)
	}
}

func TestSimilarityDecodesScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/similarity" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"similarity":0.82}`))
	}))
	defer server.Close()

	client := New(server.URL, "en_core_web_md", nil)
	score, err := client.Similarity(context.Background(), "backend api", "server development")
	if err != nil {
		t.Fatalf("Similarity() error = %v", err)
	}
	if score != 0.82 {
		t.Fatalf("score = %v, want 0.82", score)
	}
}

func TestLemmasAndNounChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lemmas":
			_, _ = w.Write([]byte(`{"tokens":[{"text":"built","lemma":"build","stopword":false},{"text":"the","lemma":"the","stopword":true}]}`))
		case "/noun_chunks":
			_, _ = w.Write([]byte(`{"chunks":["payment gateway","rest apis"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "en_core_web_md", nil)

	tokens, err := client.Lemmas(context.Background(), "built the")
	if err != nil {
		t.Fatalf("Lemmas() error = %v", err)
	}
	if len(tokens) != 2 || tokens[0].Lemma != "build" || !tokens[1].Stopword {
		t.Fatalf("unexpected tokens: %v", tokens)
	}

	chunks, err := client.NounChunks(context.Background(), "payment gateway rest apis")
	if err != nil {
		t.Fatalf("NounChunks() error = %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "payment gateway" {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}

func TestEntitiesIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "en_core_web_md", nil)
	_, err := client.Entities(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model loading") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}
