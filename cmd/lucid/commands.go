package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/spf13/cobra"

	"github.com/zeattacker/lucid-go/internal/logging"
	"github.com/zeattacker/lucid-go/internal/profiling"
	"github.com/zeattacker/lucid-go/pkg/embedding"
	"github.com/zeattacker/lucid-go/pkg/perception"
	"github.com/zeattacker/lucid-go/pkg/retrieval"
	"github.com/zeattacker/lucid-go/pkg/spreading"
)

func newRetrieveCmd() *cobra.Command {
	var corpusPath string
	var showStats bool

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Run the full retrieval pipeline over a YAML corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCorpus(corpusPath)
			if err != nil {
				return err
			}

			cfg := retrieval.DefaultConfig()
			if c.Config != nil {
				cfg = *c.Config
			}

			start := time.Now()
			timer := profiling.NewTimer(uuid.NewString())
			stop := timer.Stage(profiling.StageRetrieve)
			candidates := retrieval.Retrieve(c.toInput(), cfg)
			stop()
			timer.Flush()
			elapsed := time.Since(start)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tMEMORY\tTOTAL\tPROBE\tBASE\tSPREAD\tPROB\tLATENCY")
			for rank, cand := range candidates {
				fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.2f\t%.4f\t%.3f\t%.0fms\n",
					rank+1, c.label(cand.Index), cand.TotalActivation,
					cand.ProbeActivation, cand.BaseLevel, cand.Spreading,
					cand.Probability, cand.LatencyMs)
			}
			w.Flush()

			logging.Debug(logging.CLI, "%d candidates in %s", len(candidates), elapsed)
			if showStats {
				printResourceStats(elapsed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "corpus.yaml", "corpus YAML file")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print process resource usage")
	return cmd
}

func newSpreadCmd() *cobra.Command {
	var corpusPath string
	var seeds []int
	var depth int

	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Run raw spreading activation from seed indices",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCorpus(corpusPath)
			if err != nil {
				return err
			}

			seedActs := make([]float64, len(seeds))
			for i := range seedActs {
				seedActs[i] = 1.0
			}

			timer := profiling.NewTimer(uuid.NewString())
			stop := timer.Stage(profiling.StageSpread)
			result := spreading.Spread(len(c.Memories), c.Associations, seeds, seedActs, spreading.DefaultConfig(), depth)
			stop()
			timer.Flush()

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MEMORY\tACTIVATION")
			for _, idx := range spreading.TopActivated(result.Activations, len(c.Memories)) {
				fmt.Fprintf(w, "%s\t%.4f\n", c.label(idx), result.Activations[idx])
			}
			w.Flush()

			for d, nodes := range result.VisitedByDepth {
				logging.Debug(logging.CLI, "depth %d: %d nodes", d, len(nodes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "corpus.yaml", "corpus YAML file")
	cmd.Flags().IntSliceVarP(&seeds, "seed", "s", nil, "seed memory indices")
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "spreading depth")
	return cmd
}

func newPageRankCmd() *cobra.Command {
	var corpusPath string
	var damping float64
	var iterations int

	cmd := &cobra.Command{
		Use:   "pagerank",
		Short: "Rank memory importance over the association graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCorpus(corpusPath)
			if err != nil {
				return err
			}

			ranks := spreading.PageRank(len(c.Memories), c.Associations, damping, iterations)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MEMORY\tRANK")
			for _, idx := range spreading.TopActivated(ranks, len(ranks)) {
				fmt.Fprintf(w, "%s\t%.5f\n", c.label(idx), ranks[idx])
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "corpus.yaml", "corpus YAML file")
	cmd.Flags().Float64Var(&damping, "damping", 0.85, "damping factor")
	cmd.Flags().IntVar(&iterations, "iterations", 50, "max iterations")
	return cmd
}

func newEmbedCmd() *cobra.Command {
	var baseURL, model string

	cmd := &cobra.Command{
		Use:   "embed [text...]",
		Short: "Embed text via the local embedding backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := embedding.NewClient(baseURL, model)
			if err := client.Load(); err != nil {
				return err
			}

			vectors, err := client.EmbedBatch(args)
			if err != nil {
				return err
			}
			for i, v := range vectors {
				fmt.Printf("%q: %d dims, head=[%.4f %.4f %.4f ...]\n",
					logging.Ellipsize(args[i], 40), len(v), v[0], v[1], v[2])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "embedding server URL")
	cmd.Flags().StringVar(&model, "model", "", "embedding model name")
	return cmd
}

func newVideoCmd() *cobra.Command {
	var skipTranscription, showStats bool

	cmd := &cobra.Command{
		Use:   "video <file>",
		Short: "Run the video ingestion pipeline over a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := perception.DefaultPipelineConfig()
			cfg.SkipTranscription = skipTranscription

			start := time.Now()
			result, err := perception.ProcessVideo(context.Background(), args[0], cfg)
			if err != nil {
				return err
			}

			fmt.Printf("duration: %.1fs  %dx%d @ %.1ffps  codec=%s  audio=%v\n",
				result.Metadata.DurationSec, result.Metadata.Width, result.Metadata.Height,
				result.Metadata.FPS, result.Metadata.Codec, result.Metadata.HasAudio)
			fmt.Printf("frames: %d (%d scene changes)\n",
				result.Stats.FrameCount, result.Stats.SceneChangeCount)

			if result.NoAudio {
				fmt.Println("transcript: none (no audio stream)")
			} else if result.Transcript != nil {
				fmt.Printf("transcript: %d segments [%s]\n", result.Stats.SegmentCount, result.Transcript.Language)
				fmt.Printf("  %s\n", logging.Ellipsize(result.Transcript.Text, 120))
			}

			fmt.Printf("timing: extract=%.0fms transcribe=%.0fms total=%.0fms\n",
				result.Stats.ExtractionMs, result.Stats.TranscriptionMs, result.Stats.TotalMs)

			if showStats {
				printResourceStats(time.Since(start))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipTranscription, "no-transcribe", false, "skip transcription")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print process resource usage")
	return cmd
}

// printResourceStats reports this process's memory and CPU after a run.
func printResourceStats(elapsed time.Duration) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}
	if mem, err := proc.MemoryInfo(); err == nil {
		fmt.Printf("rss: %.1f MB\n", float64(mem.RSS)/(1024*1024))
	}
	if times, err := proc.Times(); err == nil {
		fmt.Printf("cpu: %.2fs user, %.2fs system over %s\n", times.User, times.System, elapsed.Round(time.Millisecond))
	}
}
