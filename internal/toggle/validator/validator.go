package validator

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/OpenGG/rspec-toggle/internal/toggle/domain"
)

// Validator checks root-relative paths before anything is written under a project root.
type Validator struct{}

// New creates a new Validator instance.
func New() *Validator {
	return &Validator{}
}

// ValidateRelativePath validates a path relative to a project root.
//
// The function checks for:
//   - Empty or whitespace-only paths
//   - Null bytes
//   - Absolute paths (the root prefix was not stripped)
//   - ".." segments that climb above the root
//
// Returns (true, nil) if valid, or (false, error) with a descriptive error.
func (v *Validator) ValidateRelativePath(rel string) (bool, error) {
	if strings.TrimSpace(rel) == "" {
		return false, domain.ErrRelativePathEmpty
	}
	if strings.ContainsRune(rel, 0) {
		return false, domain.ErrRelativePathNull
	}
	slashed := filepath.ToSlash(rel)
	if filepath.IsAbs(rel) || strings.HasPrefix(slashed, "/") {
		return false, domain.ErrRelativePathAbs
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false, domain.ErrRelativePathEscapes
	}
	return true, nil
}
