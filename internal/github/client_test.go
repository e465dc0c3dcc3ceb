// internal/github/client_test.go
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a httptest server and a client pointing to it.
func setupTestClient(t *testing.T, token string, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := NewClient(token, logger)

	// Point the go-github client at the test server, keeping the oauth2 transport.
	require.NoError(t, client.SetBaseURL(server.URL))

	return client, server
}

func TestClient_ListRepositories(t *testing.T) {
	t.Run("sends bearer token and per_page, extracts pinned topic", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/someone/repos", r.URL.Path)
			assert.Equal(t, "200", r.URL.Query().Get("per_page"))
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[
				{"name": "robot", "owner": {"login": "someone"}, "homepage": "https://robot.dev",
				 "description": "arm control", "topics": ["robotics", "pinned", "cpp"], "fork": false,
				 "languages_url": "https://api.github.com/repos/someone/robot/languages"},
				{"name": "upstream", "owner": {"login": "someone"}, "homepage": null, "description": null,
				 "fork": true, "languages_url": "https://api.github.com/repos/someone/upstream/languages"}
			]`)
		})
		client, _ := setupTestClient(t, "secret", handler)

		repos, err := client.ListRepositories(context.Background(), "someone", 200)

		require.NoError(t, err)
		require.Len(t, repos, 2)
		assert.Equal(t, "robot", repos[0].Name)
		assert.Equal(t, "someone", repos[0].Owner)
		assert.True(t, repos[0].Pinned)
		assert.Equal(t, []string{"robotics", "cpp"}, repos[0].Topics)
		assert.Equal(t, "https://robot.dev", repos[0].Homepage)
		assert.False(t, repos[0].Fork)

		assert.False(t, repos[1].Pinned)
		assert.Empty(t, repos[1].Topics)
		assert.NotNil(t, repos[1].Topics)
		assert.Equal(t, "", repos[1].Homepage)
		assert.Equal(t, "", repos[1].Description)
		assert.True(t, repos[1].Fork)
	})

	t.Run("rejects an error object where a list is expected", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{"message": "something odd"}`)
		})
		client, _ := setupTestClient(t, "secret", handler)

		repos, err := client.ListRepositories(context.Background(), "someone", 200)

		require.Error(t, err)
		assert.Nil(t, repos)
	})

	t.Run("surfaces API errors without retrying", func(t *testing.T) {
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintln(w, `{"message": "Bad credentials"}`)
		})
		client, _ := setupTestClient(t, "secret", handler)

		_, err := client.ListRepositories(context.Background(), "someone", 200)

		require.Error(t, err)
		var ghErr *github.ErrorResponse
		assert.ErrorAs(t, err, &ghErr)
		assert.Equal(t, http.StatusUnauthorized, ghErr.Response.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount))
	})

	t.Run("sends no authorization header without a token", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			fmt.Fprintln(w, `[]`)
		})
		client, _ := setupTestClient(t, "", handler)

		repos, err := client.ListRepositories(context.Background(), "someone", 200)

		require.NoError(t, err)
		assert.Empty(t, repos)
	})
}

func TestClient_ListCommits(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/someone/robot/commits", r.URL.Path)
		fmt.Fprintln(w, `[
			{"sha": "abc", "html_url": "https://github.com/someone/robot/commit/abc",
			 "author": {"login": "KyleAlanJeffrey"},
			 "commit": {"message": "feat: arm", "author": {"name": "Kyle", "email": "k@x.com", "date": "2024-03-02T10:00:00Z"},
			            "committer": {"name": "GitHub", "email": "noreply@github.com", "date": "2024-03-02T11:00:00Z"}},
			 "parents": [{"sha": "p1"}, {"sha": "p2"}]},
			{"sha": "root", "author": null,
			 "commit": {"message": "init", "author": {"name": "business kyle", "email": "b@x.com", "date": "2024-01-01T00:00:00Z"}},
			 "parents": []}
		]`)
	})
	client, _ := setupTestClient(t, "secret", handler)

	commits, err := client.ListCommits(context.Background(), "someone", "robot", 0)

	require.NoError(t, err)
	require.Len(t, commits, 2)

	first := commits[0]
	assert.Equal(t, "someone", first.Owner)
	assert.Equal(t, "robot", first.Repo)
	assert.Equal(t, "someone/robot", first.RepoSlug())
	assert.Equal(t, "KyleAlanJeffrey", first.AuthorLogin)
	assert.Equal(t, "Kyle", first.AuthorName)
	assert.Equal(t, "GitHub", first.CommitterName)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), first.AuthorDate.UTC())
	assert.Equal(t, []string{"p1", "p2"}, first.Parents)

	root := commits[1]
	assert.Empty(t, root.AuthorLogin)
	assert.Equal(t, "business kyle", root.AuthorName)
	_, ok := root.FirstParent()
	assert.False(t, ok)
}

func TestClient_GetLanguages(t *testing.T) {
	t.Run("decodes the byte counts", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/someone/robot/languages", r.URL.Path)
			fmt.Fprintln(w, `{"TypeScript": 300, "Python": 100}`)
		})
		client, server := setupTestClient(t, "secret", handler)

		langs, err := client.GetLanguages(context.Background(), server.URL+"/repos/someone/robot/languages")

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"TypeScript": 300, "Python": 100}, langs)
	})

	t.Run("rejects a list where an object is expected", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `["TypeScript"]`)
		})
		client, server := setupTestClient(t, "secret", handler)

		_, err := client.GetLanguages(context.Background(), server.URL+"/repos/someone/robot/languages")

		assert.Error(t, err)
	})

	t.Run("rejects non-numeric byte counts", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"Go": "lots"}`)
		})
		client, server := setupTestClient(t, "secret", handler)

		_, err := client.GetLanguages(context.Background(), server.URL+"/repos/someone/robot/languages")

		assert.Error(t, err)
	})
}

func TestClient_CompareCommits(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/someone/robot/compare/p1...abc", r.URL.Path)
		fmt.Fprintln(w, `{"status": "ahead", "ahead_by": 1, "total_commits": 1,
			"files": [{"filename": "a.go", "additions": 10, "deletions": 2, "changes": 12},
			          {"filename": "b.go", "additions": 5, "deletions": 0, "changes": 5}]}`)
	})
	client, _ := setupTestClient(t, "secret", handler)

	cmp, err := client.CompareCommits(context.Background(), "someone", "robot", "p1", "abc")

	require.NoError(t, err)
	require.NotNil(t, cmp)
	assert.Equal(t, "ahead", cmp.Status)
	assert.Equal(t, 1, cmp.AheadBy)
	require.Len(t, cmp.Files, 2)
	assert.Equal(t, "a.go", cmp.Files[0].Filename)
	assert.Equal(t, 15, cmp.Summary().Additions)
	assert.Equal(t, 2, cmp.Summary().Deletions)
}

func TestClient_GetFileContents(t *testing.T) {
	t.Run("decodes base64 file content", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("day1.json\nday2.json\n"))
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/someone/haiku/contents/daily/metadata.txt", r.URL.Path)
			fmt.Fprintf(w, `{"type": "file", "encoding": "base64", "content": %q}`, encoded)
		})
		client, _ := setupTestClient(t, "", handler)

		content, err := client.GetFileContents(context.Background(), "someone", "haiku", "daily/metadata.txt")

		require.NoError(t, err)
		assert.Equal(t, "day1.json\nday2.json\n", content)
	})

	t.Run("errors on a directory listing", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `[{"type": "file", "name": "a.json"}]`)
		})
		client, _ := setupTestClient(t, "", handler)

		_, err := client.GetFileContents(context.Background(), "someone", "haiku", "daily")

		assert.Error(t, err)
	})
}
