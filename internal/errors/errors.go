// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrMissingToken is logged when a GitHub operation is attempted without a token.
var ErrMissingToken = errors.New("no GitHub access token configured")

// ErrInvalidRepoFormat is returned when a repository string is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// ErrInvalidCompareRange is returned when a comparison range is not in 'base...head' format.
type ErrInvalidCompareRange struct {
	Range string
}

func (e *ErrInvalidCompareRange) Error() string {
	return fmt.Sprintf("invalid compare range: %q, expected 'base...head'", e.Range)
}
