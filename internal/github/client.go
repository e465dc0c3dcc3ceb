// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"portfolio-activity/internal/model"
)

// Client is a wrapper around the go-github client.
// Every method issues a single request and never retries.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance.
// A non-empty token is sent as a bearer credential on every request;
// an empty token yields an unauthenticated client.
func NewClient(token string, logger *slog.Logger) *Client {
	var tc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(context.Background(), ts)
	}

	return &Client{
		gh:     github.NewClient(tc),
		logger: logger,
	}
}

// SetBaseURL points the client at a different REST endpoint, e.g. a proxy or
// a test server. The path gets a trailing slash if it lacks one.
func (c *Client) SetBaseURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse base URL %q: %w", rawURL, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c.gh.BaseURL = u
	return nil
}

// ListRepositories fetches one page of the account's repositories.
func (c *Client) ListRepositories(ctx context.Context, account string, perPage int) ([]model.Repository, error) {
	c.logger.Debug("Listing repositories", "account", account, "per_page", perPage)

	opts := &github.RepositoryListByUserOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	repos, _, err := c.gh.Repositories.ListByUser(ctx, account, opts)
	if err != nil {
		return nil, fmt.Errorf("list repositories for %s: %w", account, err)
	}

	result := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if r == nil {
			continue
		}
		result = append(result, toInternalRepository(r))
	}
	return result, nil
}

// ListCommits fetches the most recent page of commits for a repository.
// A perPage of zero leaves the page size to the API.
func (c *Client) ListCommits(ctx context.Context, owner, name string, perPage int) ([]model.Commit, error) {
	c.logger.Debug("Fetching commits page", "owner", owner, "repo", name)

	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return nil, fmt.Errorf("list commits for %s/%s: %w", owner, name, err)
	}

	result := make([]model.Commit, 0, len(commits))
	for _, rc := range commits {
		if rc == nil {
			continue
		}
		result = append(result, toInternalCommit(owner, name, rc))
	}
	return result, nil
}

// GetLanguages fetches the language breakdown published at a repository's
// languages_url. The body must be an object of language name to byte count.
func (c *Client) GetLanguages(ctx context.Context, languagesURL string) (map[string]int, error) {
	req, err := c.gh.NewRequest(http.MethodGet, languagesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build languages request: %w", err)
	}

	languages := make(map[string]int)
	if _, err := c.gh.Do(ctx, req, &languages); err != nil {
		return nil, fmt.Errorf("get languages from %s: %w", languagesURL, err)
	}
	return languages, nil
}

// CompareCommits fetches the comparison between base and head.
func (c *Client) CompareCommits(ctx context.Context, owner, name, base, head string) (*model.Comparison, error) {
	cmp, _, err := c.gh.Repositories.CompareCommits(ctx, owner, name, base, head, nil)
	if err != nil {
		return nil, fmt.Errorf("compare %s...%s in %s/%s: %w", base, head, owner, name, err)
	}
	return toInternalComparison(cmp), nil
}

// GetFileContents fetches and decodes a single file from a repository's default branch.
func (c *Client) GetFileContents(ctx context.Context, owner, name, path string) (string, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return "", fmt.Errorf("get contents of %s in %s/%s: %w", path, owner, name, err)
	}
	if file == nil {
		return "", fmt.Errorf("get contents of %s in %s/%s: path is a directory", path, owner, name)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode contents of %s in %s/%s: %w", path, owner, name, err)
	}
	return content, nil
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) model.Repository {
	pinned, topics := model.SplitPinned(r.Topics)
	return model.Repository{
		Owner:        r.GetOwner().GetLogin(),
		Name:         r.GetName(),
		Description:  r.GetDescription(),
		Homepage:     r.GetHomepage(),
		HTMLURL:      r.GetHTMLURL(),
		Topics:       topics,
		Pinned:       pinned,
		Fork:         r.GetFork(),
		LanguagesURL: r.GetLanguagesURL(),
	}
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(owner, name string, c *github.RepositoryCommit) model.Commit {
	parents := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, p.GetSHA())
	}

	return model.Commit{
		Owner:          owner,
		Repo:           name,
		SHA:            c.GetSHA(),
		Message:        c.GetCommit().GetMessage(),
		HTMLURL:        c.GetHTMLURL(),
		AuthorLogin:    c.GetAuthor().GetLogin(),
		AuthorName:     c.GetCommit().GetAuthor().GetName(),
		AuthorEmail:    c.GetCommit().GetAuthor().GetEmail(),
		AuthorDate:     c.GetCommit().GetAuthor().GetDate().Time,
		CommitterName:  c.GetCommit().GetCommitter().GetName(),
		CommitterEmail: c.GetCommit().GetCommitter().GetEmail(),
		CommitterDate:  c.GetCommit().GetCommitter().GetDate().Time,
		Parents:        parents,
	}
}

func toInternalComparison(c *github.CommitsComparison) *model.Comparison {
	files := make([]model.FileChange, 0, len(c.Files))
	for _, f := range c.Files {
		if f == nil {
			continue
		}
		files = append(files, model.FileChange{
			Filename:  f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Changes:   f.GetChanges(),
		})
	}

	return &model.Comparison{
		Status:       c.GetStatus(),
		AheadBy:      c.GetAheadBy(),
		BehindBy:     c.GetBehindBy(),
		TotalCommits: c.GetTotalCommits(),
		HTMLURL:      c.GetHTMLURL(),
		Files:        files,
	}
}
