// Package spacy is the HTTP client for the companion spaCy NLP service.
// It provides the optional model capabilities the pipeline degrades
// without: named entities, semantic similarity, lemmas, noun chunks.
package spacy

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/praktiki/internship-credit-portal/internal/core/domain"
	"github.com/praktiki/internship-credit-portal/internal/core/ports"
	"github.com/praktiki/internship-credit-portal/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Entities(ctx context.Context, text string) ([]domain.Entity, error) {
	request := map[string]any{"model": c.model, "text": text}
	var response struct {
		Entities []domain.Entity `json:"entities"`
	}
	if err := c.call(ctx, "/entities", request, &response, "entities"); err != nil {
		return nil, err
	}
	return response.Entities, nil
}

func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	request := map[string]any{"model": c.model, "text1": a, "text2": b}
	var response struct {
		Similarity float64 `json:"similarity"`
	}
	if err := c.call(ctx, "/similarity", request, &response, "similarity"); err != nil {
		return 0, err
	}
	return response.Similarity, nil
}

func (c *Client) Lemmas(ctx context.Context, text string) ([]ports.LemmaToken, error) {
	request := map[string]any{"model": c.model, "text": text}
	var response struct {
		Tokens []ports.LemmaToken `json:"tokens"`
	}
	if err := c.call(ctx, "/lemmas", request, &response, "lemmas"); err != nil {
		return nil, err
	}
	return response.Tokens, nil
}

func (c *Client) NounChunks(ctx context.Context, text string) ([]string, error) {
	request := map[string]any{"model": c.model, "text": text}
	var response struct {
		Chunks []string `json:"chunks"`
	}
	if err := c.call(ctx, "/noun_chunks", request, &response, "noun_chunks"); err != nil {
		return nil, err
	}
	return response.Chunks, nil
}

func (c *Client) call(ctx context.Context, path string, payload, out any, operation string) error {
	fn := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "spacy."+operation, fn, classifySpacyError)
	} else {
		err = fn(ctx)
	}
	return wrapTemporaryIfNeeded("spacy "+operation, err)
}
