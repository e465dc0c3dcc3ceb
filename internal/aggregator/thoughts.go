// internal/aggregator/thoughts.go
package aggregator

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"strings"
	"time"

	"portfolio-activity/internal/model"
)

const thoughtsIndexFile = "metadata.txt"

var thoughtDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DailyThoughts reads the thoughts index from the configured repository, fetches
// every listed file and returns all entries, newest first. Does not need a token.
func (a *Aggregator) DailyThoughts(ctx context.Context) []model.Thought {
	if a.opts.ThoughtsRepo == "" {
		return []model.Thought{}
	}

	owner, name, err := ParseRepoPath(a.opts.ThoughtsRepo)
	if err != nil {
		a.logger.Error("Invalid thoughts repository", "error", err)
		return []model.Thought{}
	}
	logger := a.logger.With("owner", owner, "repo", name)

	rctx, cancel := a.requestContext(ctx)
	index, err := a.api.GetFileContents(rctx, owner, name, path.Join(a.opts.ThoughtsDir, thoughtsIndexFile))
	cancel()
	if err != nil {
		logger.Error("Failed to fetch thoughts index", "error", err)
		return []model.Thought{}
	}

	var files []string
	for _, line := range strings.Split(index, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}

	perFile := make([][]model.Thought, len(files))
	a.fanOut(ctx, len(files), func(ctx context.Context, i int) {
		filePath := path.Join(a.opts.ThoughtsDir, files[i])
		content, err := a.api.GetFileContents(ctx, owner, name, filePath)
		if err != nil {
			logger.Warn("Skipping thoughts file", "file", filePath, "error", err)
			return
		}
		thoughts, err := parseThoughts([]byte(content))
		if err != nil {
			logger.Warn("Skipping malformed thoughts file", "file", filePath, "error", err)
			return
		}
		perFile[i] = thoughts
	})

	all := []model.Thought{}
	for _, thoughts := range perFile {
		all = append(all, thoughts...)
	}

	// Undated entries go last.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Date.IsZero() != all[j].Date.IsZero() {
			return !all[i].Date.IsZero()
		}
		return all[i].Date.After(all[j].Date)
	})

	return all
}

// parseThoughts decodes a {"entries": [...]} document. Entries that are not
// JSON objects are dropped.
func parseThoughts(data []byte) ([]model.Thought, error) {
	var doc struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	thoughts := make([]model.Thought, 0, len(doc.Entries))
	for _, raw := range doc.Entries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
			continue
		}
		var date string
		_ = json.Unmarshal(fields["date"], &date)
		thoughts = append(thoughts, model.Thought{
			Date:  parseThoughtDate(date),
			Entry: raw,
		})
	}
	return thoughts, nil
}

func parseThoughtDate(s string) time.Time {
	for _, layout := range thoughtDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
