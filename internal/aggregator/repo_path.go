// internal/aggregator/repo_path.go
package aggregator

import (
	"strings"

	custom_errors "portfolio-activity/internal/errors"
)

// ParseRepoPath splits "owner/name".
func ParseRepoPath(repoPath string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(repoPath), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &custom_errors.ErrInvalidRepoFormat{Repo: repoPath}
	}
	return parts[0], parts[1], nil
}

// ParseCompareRange splits "base...head".
func ParseCompareRange(basehead string) (base, head string, err error) {
	base, head, found := strings.Cut(basehead, "...")
	if !found || base == "" || head == "" || strings.Contains(head, "...") {
		return "", "", &custom_errors.ErrInvalidCompareRange{Range: basehead}
	}
	return base, head, nil
}
