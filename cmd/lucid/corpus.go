package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeattacker/lucid-go/pkg/retrieval"
	"github.com/zeattacker/lucid-go/pkg/spreading"
)

// corpusMemory is one trace record in a YAML corpus.
type corpusMemory struct {
	Embedding       []float64 `yaml:"embedding"`
	AccessHistoryMs []float64 `yaml:"access_history_ms"`
	EmotionalWeight float64   `yaml:"emotional_weight"`
	DecayRate       float64   `yaml:"decay_rate"`
	WMBoost         float64   `yaml:"wm_boost"`
	Significance    float64   `yaml:"significance"`
	Label           string    `yaml:"label"`
}

// corpus is the YAML file format the CLI consumes. All state is
// caller-owned; the engine never writes it back.
type corpus struct {
	Memories      []corpusMemory          `yaml:"memories"`
	Associations  []spreading.Association `yaml:"associations"`
	Probe         []float64               `yaml:"probe"`
	CurrentTimeMs float64                 `yaml:"current_time_ms"`
	Config        *retrieval.Config       `yaml:"config"`
}

func loadCorpus(path string) (*corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var c corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return &c, nil
}

// toInput converts a corpus into the retrieval input arrays.
func (c *corpus) toInput() retrieval.Input {
	n := len(c.Memories)
	input := retrieval.Input{
		ProbeEmbedding:      c.Probe,
		MemoryEmbeddings:    make([][]float64, n),
		AccessHistoriesMs:   make([][]float64, n),
		EmotionalWeights:    make([]float64, n),
		DecayRates:          make([]float64, n),
		WorkingMemoryBoosts: make([]float64, n),
		Associations:        c.Associations,
		CurrentTimeMs:       c.CurrentTimeMs,
	}
	for i, m := range c.Memories {
		input.MemoryEmbeddings[i] = m.Embedding
		input.AccessHistoriesMs[i] = m.AccessHistoryMs
		input.EmotionalWeights[i] = defaultIfZero(m.EmotionalWeight, 0.5)
		input.DecayRates[i] = defaultIfZero(m.DecayRate, 0.5)
		input.WorkingMemoryBoosts[i] = defaultIfZero(m.WMBoost, 1.0)
	}
	return input
}

func (c *corpus) label(i int) string {
	if i < len(c.Memories) && c.Memories[i].Label != "" {
		return c.Memories[i].Label
	}
	return fmt.Sprintf("memory-%d", i)
}

func defaultIfZero(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
