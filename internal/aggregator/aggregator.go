// internal/aggregator/aggregator.go
package aggregator

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "portfolio-activity/internal/errors"
	"portfolio-activity/internal/model"
)

// DefaultReposPerPage is the page-size ceiling for the repository listing.
const DefaultReposPerPage = 200

// GitHubAPI is the subset of the GitHub client the aggregator needs.
type GitHubAPI interface {
	ListRepositories(ctx context.Context, account string, perPage int) ([]model.Repository, error)
	ListCommits(ctx context.Context, owner, name string, perPage int) ([]model.Commit, error)
	GetLanguages(ctx context.Context, languagesURL string) (map[string]int, error)
	CompareCommits(ctx context.Context, owner, name, base, head string) (*model.Comparison, error)
	GetFileContents(ctx context.Context, owner, name, path string) (string, error)
}

// Options configures an Aggregator.
type Options struct {
	Token          string
	Account        string
	AuthorAliases  []string
	ReposPerPage   int
	CommitsPerPage int
	// FanOutLimit caps in-flight per-repository requests. Zero or less means unbounded.
	FanOutLimit int
	// RequestTimeout bounds each individual request. Zero means no timeout.
	RequestTimeout time.Duration
	ThoughtsRepo   string
	ThoughtsDir    string
}

// Aggregator produces the repository, commit and language data shown on the site.
// Every operation fails open: errors are logged and an empty result is returned.
type Aggregator struct {
	api     GitHubAPI
	opts    Options
	aliases map[string]struct{}
	logger  *slog.Logger
}

// New creates a new Aggregator instance.
func New(api GitHubAPI, opts Options, logger *slog.Logger) *Aggregator {
	if opts.ReposPerPage <= 0 {
		opts.ReposPerPage = DefaultReposPerPage
	}

	aliases := make(map[string]struct{}, len(opts.AuthorAliases))
	for _, alias := range opts.AuthorAliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias != "" {
			aliases[alias] = struct{}{}
		}
	}

	return &Aggregator{
		api:     api,
		opts:    opts,
		aliases: aliases,
		logger:  logger,
	}
}

// ListRepositories returns the account's repositories. The result is never nil.
func (a *Aggregator) ListRepositories(ctx context.Context) []model.Repository {
	if a.opts.Token == "" {
		a.logger.Error("Skipping repository listing", "error", custom_errors.ErrMissingToken)
		return []model.Repository{}
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	repos, err := a.api.ListRepositories(rctx, a.opts.Account, a.opts.ReposPerPage)
	if err != nil {
		a.logger.Error("Failed to list repositories", "account", a.opts.Account, "error", err)
		return []model.Repository{}
	}
	if repos == nil {
		return []model.Repository{}
	}
	return repos
}

// CollectCommits returns the owner's commits across every repository, newest first.
func (a *Aggregator) CollectCommits(ctx context.Context) []model.Commit {
	repos := a.ListRepositories(ctx)
	a.logger.Info("Collecting commits", "repos", len(repos))

	perRepo := make([][]model.Commit, len(repos))
	a.fanOut(ctx, len(repos), func(ctx context.Context, i int) {
		name := repos[i].Name
		commits, err := a.api.ListCommits(ctx, a.opts.Account, name, a.opts.CommitsPerPage)
		if err != nil {
			a.logger.Warn("Skipping commits for repository", "owner", a.opts.Account, "repo", name, "error", err)
			return
		}
		perRepo[i] = commits
	})

	var all []model.Commit
	for _, commits := range perRepo {
		all = append(all, commits...)
	}

	sortCommitsNewestFirst(all)

	owned := make([]model.Commit, 0, len(all))
	for _, c := range all {
		if a.isOwnCommit(c) {
			owned = append(owned, c)
		}
	}

	a.logger.Info("Collected commits", "total", len(all), "owned", len(owned))
	return owned
}

// LanguageStats returns each language's rounded share of bytes across all
// non-fork repositories, largest first.
func (a *Aggregator) LanguageStats(ctx context.Context) []model.LanguageStat {
	repos := a.ListRepositories(ctx)
	if len(repos) == 0 {
		return []model.LanguageStat{}
	}

	var targets []model.Repository
	for _, r := range repos {
		if r.Fork || r.LanguagesURL == "" {
			continue
		}
		targets = append(targets, r)
	}

	perRepo := make([]map[string]int, len(targets))
	a.fanOut(ctx, len(targets), func(ctx context.Context, i int) {
		langs, err := a.api.GetLanguages(ctx, targets[i].LanguagesURL)
		if err != nil {
			a.logger.Warn("Skipping languages for repository", "repo", targets[i].Name, "error", err)
			return
		}
		perRepo[i] = langs
	})

	totals := make(map[string]int64)
	for _, langs := range perRepo {
		for language, bytes := range langs {
			if bytes <= 0 {
				continue
			}
			totals[language] += int64(bytes)
		}
	}

	return toLanguageStats(totals)
}

// CompareCommits returns the comparison between base and head in repoPath
// ("owner/name"), or nil when it cannot be resolved.
func (a *Aggregator) CompareCommits(ctx context.Context, repoPath, base, head string) *model.Comparison {
	logger := a.logger.With("repo", repoPath, "base", base, "head", head)

	if a.opts.Token == "" {
		logger.Error("Skipping commit comparison", "error", custom_errors.ErrMissingToken)
		return nil
	}

	owner, name, err := ParseRepoPath(repoPath)
	if err != nil {
		logger.Error("Invalid repository for comparison", "error", err)
		return nil
	}

	rctx, cancel := a.requestContext(ctx)
	defer cancel()

	cmp, err := a.api.CompareCommits(rctx, owner, name, base, head)
	if err != nil {
		logger.Error("Failed to compare commits", "error", err)
		return nil
	}
	return cmp
}

// CommitDiff resolves the "+N -M" summary of a commit against its first parent.
// Root commits and unresolvable comparisons yield the zero summary.
func (a *Aggregator) CommitDiff(ctx context.Context, c model.Commit) model.DiffSummary {
	parent, ok := c.FirstParent()
	if !ok || c.SHA == "" {
		return model.DiffSummary{}
	}
	return a.CompareCommits(ctx, c.RepoSlug(), parent, c.SHA).Summary()
}

// fanOut runs fn once per index and waits for all of them. fn handles its own
// failures, so one task never cancels the others.
func (a *Aggregator) fanOut(ctx context.Context, n int, fn func(ctx context.Context, i int)) {
	if n == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.opts.FanOutLimit > 0 {
		g.SetLimit(a.opts.FanOutLimit)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			rctx, cancel := a.requestContext(gctx)
			defer cancel()
			fn(rctx, i)
			return nil
		})
	}

	_ = g.Wait()
}

func (a *Aggregator) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.opts.RequestTimeout)
	}
	return ctx, func() {}
}

// isOwnCommit matches the GitHub login or the raw author name against the alias set.
func (a *Aggregator) isOwnCommit(c model.Commit) bool {
	if c.AuthorLogin != "" {
		if _, ok := a.aliases[strings.ToLower(c.AuthorLogin)]; ok {
			return true
		}
	}
	_, ok := a.aliases[strings.ToLower(c.AuthorName)]
	return ok
}

func sortCommitsNewestFirst(commits []model.Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].AuthorDate.After(commits[j].AuthorDate)
	})
}

// toLanguageStats converts byte totals to percentages of the grand total.
// Each percentage is rounded on its own, so the sum may drift from 100.
func toLanguageStats(totals map[string]int64) []model.LanguageStat {
	var grand int64
	for _, bytes := range totals {
		grand += bytes
	}
	if grand == 0 {
		return []model.LanguageStat{}
	}

	stats := make([]model.LanguageStat, 0, len(totals))
	for language, bytes := range totals {
		stats = append(stats, model.LanguageStat{
			Language: language,
			Percent:  int(math.Round(float64(bytes) / float64(grand) * 100)),
			Bytes:    bytes,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Percent != stats[j].Percent {
			return stats[i].Percent > stats[j].Percent
		}
		if stats[i].Bytes != stats[j].Bytes {
			return stats[i].Bytes > stats[j].Bytes
		}
		return stats[i].Language < stats[j].Language
	})

	return stats
}
