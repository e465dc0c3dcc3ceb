// cmd/snapshot/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"portfolio-activity/internal/aggregator"
	"portfolio-activity/internal/config"
	"portfolio-activity/internal/github"
	"portfolio-activity/internal/model"
)

// source is the subset of the aggregator a snapshot is built from.
type source interface {
	ListRepositories(ctx context.Context) []model.Repository
	CollectCommits(ctx context.Context) []model.Commit
	LanguageStats(ctx context.Context) []model.LanguageStat
	DailyThoughts(ctx context.Context) []model.Thought
	CommitDiff(ctx context.Context, c model.Commit) model.DiffSummary
}

// Snapshot is the document written for static builds of the site.
type Snapshot struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Repositories []model.Repository   `json:"repositories"`
	Commits      []snapshotCommit     `json:"commits"`
	Languages    []model.LanguageStat `json:"languages"`
	Thoughts     []model.Thought      `json:"thoughts"`
}

type snapshotCommit struct {
	model.Commit
	Diff *model.DiffSummary `json:"diff,omitempty"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("Snapshot failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	out := flag.String("out", "", "write the snapshot to this file instead of stdout")
	diffs := flag.Int("diffs", 10, "resolve +N -M summaries for the newest N commits")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ghClient := github.NewClient(cfg.GithubToken, logger)
	if cfg.GithubAPIURL != "" {
		if err := ghClient.SetBaseURL(cfg.GithubAPIURL); err != nil {
			return fmt.Errorf("failed to configure GitHub client: %w", err)
		}
	}
	agg := aggregator.New(ghClient, cfg.AggregatorOptions(), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	snap, err := buildSnapshot(ctx, agg, *diffs)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", *out, err)
		}
		defer f.Close()
		w = f
	}

	if err := writeSnapshot(w, snap); err != nil {
		return err
	}
	logger.Info("Snapshot written",
		"repositories", len(snap.Repositories),
		"commits", len(snap.Commits),
		"languages", len(snap.Languages),
		"thoughts", len(snap.Thoughts))
	return nil
}

// buildSnapshot runs every product concurrently, then resolves diff summaries
// for the newest diffs commits.
func buildSnapshot(ctx context.Context, src source, diffs int) (*Snapshot, error) {
	snap := &Snapshot{GeneratedAt: time.Now().UTC()}
	var commits []model.Commit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Repositories = src.ListRepositories(gctx)
		return nil
	})
	g.Go(func() error {
		commits = src.CollectCommits(gctx)
		return nil
	})
	g.Go(func() error {
		snap.Languages = src.LanguageStats(gctx)
		return nil
	})
	g.Go(func() error {
		snap.Thoughts = src.DailyThoughts(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("snapshot interrupted: %w", err)
	}

	snap.Commits = make([]snapshotCommit, len(commits))
	dg, dctx := errgroup.WithContext(ctx)
	for i, c := range commits {
		i, c := i, c
		snap.Commits[i] = snapshotCommit{Commit: c}
		if i >= diffs {
			continue
		}
		dg.Go(func() error {
			d := src.CommitDiff(dctx, c)
			if !d.IsZero() {
				snap.Commits[i].Diff = &d
			}
			return nil
		})
	}
	if err := dg.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func writeSnapshot(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
