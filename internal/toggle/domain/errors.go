package domain

import "errors"

// Exported error variables allow callers to use errors.Is() for error checking.
var (
	ErrNoProjectRoot       = errors.New("file is not inside any project root")
	ErrNoActiveFile        = errors.New("no file given")
	ErrConventionMismatch  = errors.New("path does not follow the spec naming convention")
	ErrRelativePathEmpty   = errors.New("relative path cannot be empty")
	ErrRelativePathAbs     = errors.New("relative path cannot be absolute")
	ErrRelativePathEscapes = errors.New("relative path escapes the project root")
	ErrRelativePathNull    = errors.New("relative path contains null byte")
)
