package toggle

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/OpenGG/rspec-toggle/internal/toggle/paths"
)

// FileKind tells spec files apart from the implementation files they verify.
type FileKind int

const (
	KindImplementation FileKind = iota
	KindSpec
)

func (k FileKind) String() string {
	if k == KindSpec {
		return "spec"
	}
	return "implementation"
}

// Spec file templates.
const (
	PlainTemplate = "require 'spec_helper'\n\n"
	RailsTemplate = "require 'rails_helper'\n\n"
)

// globMeta lists the characters doublestar treats specially.
const globMeta = `*?[]{}\`

var (
	specFilePattern  = regexp.MustCompile(`^spec/(.*?)_spec\.rb$`)
	railsImplPattern = regexp.MustCompile(`^(?:app/)?(.*?)\.rb$`)
	plainImplPattern = regexp.MustCompile(`^lib/(.*?)\.rb$`)
)

// Classify reports whether rel is a spec file. Any path starting with the
// literal "spec" counts, including "spec_helper.rb".
func Classify(rel string) FileKind {
	if strings.HasPrefix(filepath.ToSlash(rel), paths.SpecDirName) {
		return KindSpec
	}
	return KindImplementation
}

// ImplementationBase rewrites "spec/X_spec.rb" to "X.rb".
func ImplementationBase(rel string) (string, bool) {
	m := specFilePattern.FindStringSubmatch(filepath.ToSlash(rel))
	if m == nil {
		return "", false
	}
	return m[1] + paths.RubyExt, true
}

// ImplementationCandidates lists where the implementation of base may live,
// in probe order. The lib/ and app/ variants are added even when base
// already starts with one of them.
func ImplementationCandidates(base string) []string {
	return []string{
		base,
		path.Join(paths.LibDirName, base),
		path.Join(paths.AppDirName, base),
	}
}

// SpecPattern rewrites an implementation path to the search pattern of its
// spec, "spec/**/X_spec.rb". Rails projects accept an optional leading
// "app/"; other projects require a leading "lib/". Glob metacharacters in X
// are backslash-escaped so they only match themselves.
func SpecPattern(rel string, rails bool) (string, bool) {
	re := plainImplPattern
	if rails {
		re = railsImplPattern
	}
	m := re.FindStringSubmatch(filepath.ToSlash(rel))
	if m == nil {
		return "", false
	}
	return paths.SpecDirName + "/" + paths.RecursiveWildcard + "/" + escapeGlob(m[1]) + paths.SpecSuffix, true
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(globMeta, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func unescapeGlob(s string) string {
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// CollapseWildcard drops the "**" segment from a spec pattern and removes
// its glob escapes, giving the conventional location for a new spec file.
func CollapseWildcard(pattern string) string {
	segments := strings.Split(pattern, "/")
	kept := segments[:0:0]
	for _, s := range segments {
		if s == paths.RecursiveWildcard {
			continue
		}
		kept = append(kept, s)
	}
	return unescapeGlob(strings.Join(kept, "/"))
}
