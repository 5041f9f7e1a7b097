package paths

import (
	"path/filepath"
	"strings"
)

// Directory and file name constants for Ruby project layouts
const (
	AppDirName        = "app"
	LibDirName        = "lib"
	ConfigDirName     = "config"
	SpecDirName       = "spec"
	RailsHelperName   = "rails_helper.rb"
	RubyExt           = ".rb"
	SpecSuffix        = "_spec.rb"
	RecursiveWildcard = "**"
	ProjectConfigName = ".rspec-toggle.yml"
)

// Layout provides methods to construct project paths relative to a root directory.
type Layout struct {
	root string
}

// New creates a new Layout for the given project root.
func New(root string) *Layout {
	return &Layout{root: root}
}

// Root returns the project root.
func (l *Layout) Root() string {
	return l.root
}

// AppDir returns the app directory path.
func (l *Layout) AppDir() string {
	return filepath.Join(l.root, AppDirName)
}

// LibDir returns the lib directory path.
func (l *Layout) LibDir() string {
	return filepath.Join(l.root, LibDirName)
}

// ConfigDir returns the config directory path.
func (l *Layout) ConfigDir() string {
	return filepath.Join(l.root, ConfigDirName)
}

// SpecDir returns the spec directory path.
func (l *Layout) SpecDir() string {
	return filepath.Join(l.root, SpecDirName)
}

// RailsHelperPath returns the path to spec/rails_helper.rb.
func (l *Layout) RailsHelperPath() string {
	return filepath.Join(l.SpecDir(), RailsHelperName)
}

// ProjectConfigPath returns the path to the per-project settings override.
func (l *Layout) ProjectConfigPath() string {
	return filepath.Join(l.root, ProjectConfigName)
}

// Join resolves a root-relative path.
func (l *Layout) Join(rel string) string {
	return filepath.Join(l.root, rel)
}

// SelectRoot returns the first root that is a string prefix of current.
// The match is not path-boundary aware: "/a/b" also matches "/a/bc/x.rb".
func SelectRoot(current string, roots []string) (string, bool) {
	for _, root := range roots {
		if root == "" {
			continue
		}
		if strings.HasPrefix(current, root) {
			return root, true
		}
	}
	return "", false
}

// RelativePath strips "<root>/" from the front of current.
func RelativePath(current, root string) string {
	return strings.TrimPrefix(current, strings.TrimSuffix(root, "/")+"/")
}
