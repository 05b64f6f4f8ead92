package embedding

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeServer mimics the embedding backend's HTTP surface
func fakeServer(t *testing.T, models []string, embedCalls *int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		type model struct {
			Name string `json:"name"`
		}
		resp := struct {
			Models []model `json:"models"`
		}{}
		for _, m := range models {
			resp.Models = append(resp.Models, model{Name: m})
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
		if embedCalls != nil {
			atomic.AddInt64(embedCalls, 1)
		}
		var req struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		// Deliberately unnormalized: the client must normalize
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": []float64{3.0, 4.0, float64(len(req.Prompt))},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadFindsModel(t *testing.T) {
	srv := fakeServer(t, []string{"nomic-embed-text:latest"}, nil)

	client := NewClient(srv.URL, "nomic-embed-text")
	if err := client.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}

func TestLoadModelNotFound(t *testing.T) {
	srv := fakeServer(t, []string{"other-model"}, nil)

	client := NewClient(srv.URL, "nomic-embed-text")
	err := client.Load()
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestEmbedNormalizes(t *testing.T) {
	srv := fakeServer(t, nil, nil)

	client := NewClient(srv.URL, "")
	vec, err := client.Embed("hello")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 dims, got %d", len(vec))
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("embedding not L2-normalized: norm = %v", math.Sqrt(norm))
	}
}

func TestEmbedBatchCachesRepeats(t *testing.T) {
	var calls int64
	srv := fakeServer(t, nil, &calls)

	client := NewClient(srv.URL, "")
	if _, err := client.EmbedBatch([]string{"alpha", "beta"}); err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if _, err := client.EmbedBatch([]string{"alpha", "beta", "gamma"}); err != nil {
		t.Fatalf("second batch failed: %v", err)
	}

	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Errorf("expected 3 inference calls (2 + 1 cached-miss), got %d", got)
	}

	hits, misses := client.CacheStats()
	if hits != 2 || misses != 3 {
		t.Errorf("cache stats = %d hits / %d misses, want 2 / 3", hits, misses)
	}
}

func TestCacheRingEvictsOldest(t *testing.T) {
	cache := newEmbeddingCache(2)
	cache.set("a", []float64{1})
	cache.set("b", []float64{2})
	cache.set("c", []float64{3}) // wraps: overwrites "a"

	if _, ok := cache.get("a"); ok {
		t.Error("oldest entry survived the ring wrapping")
	}
	if v, ok := cache.get("b"); !ok || v[0] != 2 {
		t.Errorf("entry b lost: %v %v", v, ok)
	}
	if v, ok := cache.get("c"); !ok || v[0] != 3 {
		t.Errorf("entry c lost: %v %v", v, ok)
	}

	// Re-setting an existing key updates in place without consuming a slot
	cache.set("b", []float64{20})
	if v, _ := cache.get("b"); v[0] != 20 {
		t.Errorf("in-place update failed: %v", v)
	}
	if _, ok := cache.get("c"); !ok {
		t.Error("in-place update evicted a neighbor")
	}
}

func TestEmbedBatchRejectsEmptyText(t *testing.T) {
	srv := fakeServer(t, nil, nil)

	client := NewClient(srv.URL, "")
	_, err := client.EmbedBatch([]string{"ok", ""})
	if !errors.Is(err, ErrTokenizer) {
		t.Fatalf("expected ErrTokenizer, got %v", err)
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client := NewClient("http://localhost:1", "")
	vecs, err := client.EmbedBatch(nil)
	if err != nil || vecs != nil {
		t.Errorf("empty batch should be a no-op, got %v, %v", vecs, err)
	}
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Embed("hello")
	if !errors.Is(err, ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
}

func TestAverageEmbeddings(t *testing.T) {
	avg := AverageEmbeddings([][]float64{
		{1, 0},
		{0, 1},
		{1, 0, 0}, // mismatched dims: skipped
	})
	if len(avg) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(avg))
	}
	// Divisor counts all inputs, matching centroid semantics for sparse sets
	if math.Abs(avg[0]-1.0/3.0) > 1e-9 || math.Abs(avg[1]-1.0/3.0) > 1e-9 {
		t.Errorf("unexpected centroid: %v", avg)
	}

	if AverageEmbeddings(nil) != nil {
		t.Error("empty input should yield nil")
	}
}

func TestUpdateCentroid(t *testing.T) {
	current := []float64{1, 0}
	latest := []float64{0, 1}

	updated := UpdateCentroid(current, latest, 0.25)
	if math.Abs(updated[0]-0.75) > 1e-9 || math.Abs(updated[1]-0.25) > 1e-9 {
		t.Errorf("unexpected EMA: %v", updated)
	}

	if got := UpdateCentroid(nil, latest, 0.5); &got[0] != &latest[0] {
		t.Error("empty centroid should adopt the new vector")
	}
	if got := UpdateCentroid(current, []float64{1, 2, 3}, 0.5); len(got) != 3 {
		t.Error("dimension mismatch should reset to the new vector")
	}
}
