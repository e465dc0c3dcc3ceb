// internal/model/models.go
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PinnedTopic marks a repository for the featured projects list.
const PinnedTopic = "pinned"

// Repository is a snapshot of one repository owned by the account.
type Repository struct {
	Owner        string   `json:"owner"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Homepage     string   `json:"homepage"`
	HTMLURL      string   `json:"html_url"`
	Topics       []string `json:"topics"`
	Pinned       bool     `json:"pinned"`
	Fork         bool     `json:"fork"`
	LanguagesURL string   `json:"languages_url"`
}

// SplitPinned reports whether topics carries the pinned marker and returns
// the remaining topics in their original order.
func SplitPinned(topics []string) (bool, []string) {
	pinned := false
	visible := make([]string, 0, len(topics))
	for _, t := range topics {
		if t == PinnedTopic {
			pinned = true
			continue
		}
		visible = append(visible, t)
	}
	return pinned, visible
}

// Commit is a single commit from a repository's default branch.
// Owner and Repo identify the repository it was listed from.
type Commit struct {
	Owner          string    `json:"owner"`
	Repo           string    `json:"repo"`
	SHA            string    `json:"sha"`
	Message        string    `json:"message"`
	HTMLURL        string    `json:"html_url"`
	AuthorLogin    string    `json:"author_login,omitempty"`
	AuthorName     string    `json:"author_name"`
	AuthorEmail    string    `json:"author_email"`
	AuthorDate     time.Time `json:"author_date"`
	CommitterName  string    `json:"committer_name"`
	CommitterEmail string    `json:"committer_email"`
	CommitterDate  time.Time `json:"committer_date"`
	Parents        []string  `json:"parents"`
}

// RepoSlug returns "owner/repo".
func (c Commit) RepoSlug() string {
	return c.Owner + "/" + c.Repo
}

// FirstParent returns the SHA of the first parent. Root commits have none.
func (c Commit) FirstParent() (string, bool) {
	if len(c.Parents) == 0 || c.Parents[0] == "" {
		return "", false
	}
	return c.Parents[0], true
}

// LanguageStat is one language's share of the bytes across all non-fork repositories.
type LanguageStat struct {
	Language string `json:"language"`
	Percent  int    `json:"percent"`
	Bytes    int64  `json:"bytes"`
}

// FileChange is one file entry of a comparison.
type FileChange struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// Comparison is the diff between two commits of a repository.
type Comparison struct {
	Status       string       `json:"status"`
	AheadBy      int          `json:"ahead_by"`
	BehindBy     int          `json:"behind_by"`
	TotalCommits int          `json:"total_commits"`
	HTMLURL      string       `json:"html_url"`
	Files        []FileChange `json:"files"`
}

// Summary sums additions and deletions over every file. Safe on a nil receiver.
func (c *Comparison) Summary() DiffSummary {
	var s DiffSummary
	if c == nil {
		return s
	}
	for _, f := range c.Files {
		s.Additions += f.Additions
		s.Deletions += f.Deletions
	}
	return s
}

// DiffSummary is the "+N -M" indicator shown next to a commit.
type DiffSummary struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// IsZero reports whether nothing was added or deleted.
func (d DiffSummary) IsZero() bool {
	return d.Additions == 0 && d.Deletions == 0
}

// String renders "+N -M", or "" for the zero summary.
func (d DiffSummary) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("+%d -%d", d.Additions, d.Deletions)
}

// Thought is one entry of the daily thoughts feed. Entry holds the raw JSON
// object as published.
type Thought struct {
	Date  time.Time       `json:"date"`
	Entry json.RawMessage `json:"entry"`
}
