// Package embedding is the optional embedding-backend collaborator. The
// retrieval core only consumes vectors; this client produces them from text
// via a local embedding server, L2-normalized so cosine similarity reduces
// to a dot product.
package embedding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/zeattacker/lucid-go/internal/logging"
)

// Collaborator error taxonomy
var (
	// ErrModelNotFound: the configured model is not available on the server
	ErrModelNotFound = errors.New("embedding: model not found")
	// ErrTokenizer: the input could not be tokenized/accepted
	ErrTokenizer = errors.New("embedding: tokenizer error")
	// ErrInference: the model ran but produced no usable output
	ErrInference = errors.New("embedding: inference error")
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "nomic-embed-text" // 768 dims
	cacheSize      = 256
)

// Client generates embeddings via a local inference server. The server is a
// process-wide resource with single-writer discipline: the mutex is held
// only while the inference calls of one batch run (one acquisition per
// batch); cache lookups and normalization happen outside the lock.
type Client struct {
	baseURL string
	model   string
	mu      sync.Mutex
	http    *http.Client
	cache   *embeddingCache
}

// NewClient creates an embedding client. Empty arguments take the defaults
// (local server, 768-dimension model).
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: 120 * time.Second},
		cache:   newEmbeddingCache(cacheSize),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Load verifies the model is available on the server. Returns
// ErrModelNotFound when it is not.
func (c *Client) Load() error {
	resp, err := c.http.Get(c.baseURL + "/api/tags")
	if err != nil {
		return fmt.Errorf("embedding server unreachable: %w", err)
	}
	defer resp.Body.Close()

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == c.model || trimTag(m.Name) == c.model {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotFound, c.model)
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed generates an L2-normalized embedding for one text.
func (c *Client) Embed(text string) ([]float64, error) {
	batch, err := c.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return batch[0], nil
}

// EmbedBatch generates L2-normalized embeddings for several texts. The
// server lock is acquired once for the whole batch; cache lookups and
// normalization run outside it.
func (c *Client) EmbedBatch(texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float64, len(texts))
	var missing []int
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("%w: empty text at index %d", ErrTokenizer, i)
		}
		if emb, ok := c.cache.get(text); ok {
			results[i] = emb
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return results, nil
	}

	c.mu.Lock()
	raw := make([][]float64, len(missing))
	var inferErr error
	for j, i := range missing {
		raw[j], inferErr = c.embedOne(texts[i])
		if inferErr != nil {
			break
		}
	}
	c.mu.Unlock()
	if inferErr != nil {
		return nil, inferErr
	}

	for j, i := range missing {
		emb := l2Normalize(raw[j])
		c.cache.set(texts[i], emb)
		results[i] = emb
	}

	hits, misses := c.cache.stats()
	logging.Debug(logging.Embedding, "batch=%d served_from_cache=%d lifetime_hit_rate=%.2f",
		len(texts), len(texts)-len(missing), hitRate(hits, misses))

	return results, nil
}

// CacheStats reports lifetime cache hits and misses, for hosts sizing the
// ring against their probe traffic.
func (c *Client) CacheStats() (hits, misses uint64) {
	return c.cache.stats()
}

func hitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// embedOne runs a single inference call; callers hold the lock.
func (c *Client) embedOne(text string) ([]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.http.Post(c.baseURL+"/api/embeddings", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, c.model)
	}
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrInference, resp.StatusCode, detail)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInference, err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrInference)
	}
	return result.Embedding, nil
}

// l2Normalize returns a unit-length copy of v; zero vectors pass through.
func l2Normalize(v []float64) []float64 {
	var normSq float64
	for _, x := range v {
		normSq += x * x
	}
	if normSq == 0 {
		return v
	}
	norm := math.Sqrt(normSq)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// trimTag strips the ":tag" suffix of a server model name.
func trimTag(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return name[:i]
		}
	}
	return name
}

// AverageEmbeddings sums the embeddings whose dimension matches the first and
// divides by the total number of inputs; mismatched vectors add nothing to
// the sum but still count in the divisor.
func AverageEmbeddings(embeddings [][]float64) []float64 {
	if len(embeddings) == 0 {
		return nil
	}

	dims := len(embeddings[0])
	result := make([]float64, dims)

	for _, emb := range embeddings {
		if len(emb) != dims {
			continue
		}
		for i, v := range emb {
			result[i] += v
		}
	}

	n := float64(len(embeddings))
	for i := range result {
		result[i] /= n
	}
	return result
}

// UpdateCentroid folds a new embedding into a centroid using an exponential
// moving average. Dimension mismatch resets to the new vector.
func UpdateCentroid(current, latest []float64, alpha float64) []float64 {
	if len(current) == 0 {
		return latest
	}
	if len(latest) == 0 {
		return current
	}
	if len(current) != len(latest) {
		return latest
	}

	result := make([]float64, len(current))
	for i := range current {
		result[i] = alpha*latest[i] + (1-alpha)*current[i]
	}
	return result
}
