package toggle

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/OpenGG/rspec-toggle/internal/toggle/domain"
	"github.com/OpenGG/rspec-toggle/internal/toggle/paths"
	"github.com/OpenGG/rspec-toggle/internal/toggle/storage"
	"github.com/OpenGG/rspec-toggle/internal/toggle/validator"
)

// Confirmation prompts shown before a missing counterpart is created.
const (
	CreateImplementationMessage = "The implementation file doesn't exist. Do you want to create it?"
	CreateSpecMessage           = "The spec file doesn't exist. Do you want to create it?"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

// Opener hands a file to the editor.
type Opener interface {
	Open(path string) error
}

// Action describes what Toggle ended up doing.
type Action int

const (
	ActionOpened Action = iota
	ActionCreated
	ActionDeclined
	ActionSkipped
)

func (a Action) String() string {
	switch a {
	case ActionOpened:
		return "opened"
	case ActionCreated:
		return "created"
	case ActionDeclined:
		return "declined"
	default:
		return "skipped"
	}
}

// Outcome is the result of a Toggle call. Path is empty unless a file was
// opened or created.
type Outcome struct {
	Action Action
	Path   string
}

// Resolution is the read-only plan for a file's counterpart.
type Resolution struct {
	Root     string
	Relative string
	Kind     FileKind

	// Spec files.
	BasePath   string
	Candidates []string

	// Implementation files.
	Rails    bool
	Pattern  string
	Matches  []string
	Template string

	// Target is the first existing counterpart, or the path Toggle falls back
	// to when none exists. For implementation files it is the literal pattern.
	Target string
	Exists bool
}

// Resolver finds, creates and opens the counterpart of a spec or implementation file.
type Resolver struct {
	storage   *storage.Storage
	validator *validator.Validator
	confirm   Confirmer
	opener    Opener
	logger    *slog.Logger
}

// NewResolver constructs a Resolver using the provided filesystem and collaborators.
// A nil logger discards all output.
func NewResolver(fs afero.Fs, confirm Confirmer, opener Opener, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		storage:   storage.New(fs),
		validator: validator.New(),
		confirm:   confirm,
		opener:    opener,
		logger:    logger,
	}
}

// FileSystem exposes the underlying filesystem.
func (r *Resolver) FileSystem() afero.Fs {
	return r.storage.FileSystem()
}

// IsRails reports whether root has both app/ and config/ directories.
func (r *Resolver) IsRails(root string) (bool, error) {
	layout := paths.New(root)
	app, err := r.storage.IsDir(layout.AppDir())
	if err != nil {
		return false, err
	}
	if !app {
		return false, nil
	}
	return r.storage.IsDir(layout.ConfigDir())
}

// SelectTemplate returns RailsTemplate when spec/rails_helper.rb exists under root.
func (r *Resolver) SelectTemplate(root string) (string, error) {
	ok, err := r.storage.IsFile(paths.New(root).RailsHelperPath())
	if err != nil {
		return "", err
	}
	if ok {
		return RailsTemplate, nil
	}
	return PlainTemplate, nil
}

// Resolve works out where the counterpart of current lives without prompting
// or writing anything.
func (r *Resolver) Resolve(current string, roots []string) (Resolution, error) {
	if current == "" {
		return Resolution{}, domain.ErrNoActiveFile
	}
	root, ok := paths.SelectRoot(current, roots)
	if !ok {
		r.logger.Debug("no project root contains file", "file", current, "roots", roots)
		return Resolution{}, fmt.Errorf("%w: %s", domain.ErrNoProjectRoot, current)
	}

	rel := paths.RelativePath(current, root)
	if ok, err := r.validator.ValidateRelativePath(rel); !ok {
		return Resolution{}, fmt.Errorf("invalid path %q: %w", rel, err)
	}

	res := Resolution{Root: root, Relative: rel, Kind: Classify(rel)}
	if res.Kind == KindSpec {
		return res, r.resolveImplementation(&res)
	}
	return res, r.resolveSpec(&res)
}

func (r *Resolver) resolveImplementation(res *Resolution) error {
	base, ok := ImplementationBase(res.Relative)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrConventionMismatch, res.Relative)
	}
	res.BasePath = base
	res.Candidates = ImplementationCandidates(base)
	r.logger.Debug("resolved implementation base", "base_path", base, "candidates", res.Candidates)

	layout := paths.New(res.Root)
	for _, candidate := range res.Candidates {
		full := layout.Join(candidate)
		exists, err := r.storage.IsFile(full)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", full, err)
		}
		if exists {
			res.Target = full
			res.Exists = true
			return nil
		}
	}
	return nil
}

// resolveSpec searches spec/**/ under the project root only; spec trees
// nested elsewhere (engines/x/spec) are not searched.
func (r *Resolver) resolveSpec(res *Resolution) error {
	rails, err := r.IsRails(res.Root)
	if err != nil {
		return fmt.Errorf("failed to inspect project layout: %w", err)
	}
	res.Rails = rails

	pattern, ok := SpecPattern(res.Relative, rails)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrConventionMismatch, res.Relative)
	}
	res.Pattern = pattern

	template, err := r.SelectTemplate(res.Root)
	if err != nil {
		return fmt.Errorf("failed to check rails helper: %w", err)
	}
	res.Template = template

	r.logger.Debug("resolved spec pattern", "base_path", pattern, "rails", rails)
	r.logger.Debug("searching for spec", "root", res.Root, "pattern", pattern)

	matches, err := r.storage.Glob(res.Root, pattern)
	if err != nil {
		return err
	}
	res.Matches = matches

	res.Target = paths.New(res.Root).Join(pattern)
	if len(matches) > 0 {
		for _, m := range matches {
			r.logger.Debug("found file", "path", m)
		}
		if len(matches) > 1 {
			r.logger.Debug("multiple specs found, using the first", "count", len(matches))
		}
		res.Target = matches[0]
	} else {
		r.logger.Debug("nothing found", "pattern", pattern)
		conventional := paths.New(res.Root).Join(CollapseWildcard(pattern))
		found, err := r.storage.IsFile(conventional)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", conventional, err)
		}
		if found {
			r.logger.Debug("found file", "path", conventional)
			res.Target = conventional
		}
	}

	exists, err := r.storage.IsFile(res.Target)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", res.Target, err)
	}
	res.Exists = exists
	return nil
}

// Toggle opens the counterpart of current, offering to create it when missing.
//
// Spec files resolve to the first existing implementation candidate. When
// none exists the user is asked before an empty file is created under app/
// or lib/, whichever already has the target's parent directory.
//
// Implementation files resolve to the first spec matching "spec/**/X_spec.rb".
// When none exists the user is asked before the spec is created from the
// plain or Rails template, along with any missing directories.
//
// Paths outside every root and paths that do not follow the naming
// convention are returned as errors wrapping domain.ErrNoProjectRoot and
// domain.ErrConventionMismatch.
func (r *Resolver) Toggle(current string, roots []string) (Outcome, error) {
	res, err := r.Resolve(current, roots)
	if err != nil {
		return Outcome{Action: ActionSkipped}, err
	}

	if res.Exists {
		if err := r.opener.Open(res.Target); err != nil {
			return Outcome{Action: ActionSkipped}, fmt.Errorf("failed to open %s: %w", res.Target, err)
		}
		return Outcome{Action: ActionOpened, Path: res.Target}, nil
	}

	if res.Kind == KindSpec {
		return r.createImplementation(res)
	}
	return r.createSpec(res)
}

func (r *Resolver) createImplementation(res Resolution) (Outcome, error) {
	ok, err := r.confirm.Confirm(CreateImplementationMessage)
	if err != nil {
		return Outcome{Action: ActionDeclined}, err
	}
	if !ok {
		r.logger.Debug("implementation creation declined", "base_path", res.BasePath)
		return Outcome{Action: ActionDeclined}, nil
	}

	layout := paths.New(res.Root)
	for _, dir := range []string{layout.AppDir(), layout.LibDir()} {
		full := filepath.Join(dir, filepath.FromSlash(res.BasePath))
		parent, err := r.storage.IsDir(filepath.Dir(full))
		if err != nil {
			return Outcome{Action: ActionSkipped}, fmt.Errorf("failed to check %s: %w", filepath.Dir(full), err)
		}
		if !parent {
			continue
		}
		if err := r.storage.CreateFile(full, nil); err != nil {
			return Outcome{Action: ActionSkipped}, fmt.Errorf("failed to create implementation file: %w", err)
		}
		r.logger.Info("implementation file created", "path", full)
		return r.openCreated(full)
	}

	r.logger.Debug("no existing parent directory for implementation", "base_path", res.BasePath)
	return Outcome{Action: ActionSkipped}, nil
}

func (r *Resolver) createSpec(res Resolution) (Outcome, error) {
	ok, err := r.confirm.Confirm(CreateSpecMessage)
	if err != nil {
		return Outcome{Action: ActionDeclined}, err
	}
	if !ok {
		r.logger.Debug("spec creation declined", "pattern", res.Pattern)
		return Outcome{Action: ActionDeclined}, nil
	}

	rel := CollapseWildcard(res.Pattern)
	if ok, err := r.validator.ValidateRelativePath(rel); !ok {
		return Outcome{Action: ActionSkipped}, fmt.Errorf("invalid spec path %q: %w", rel, err)
	}
	full := paths.New(res.Root).Join(rel)

	if err := r.storage.MkdirAll(filepath.Dir(full)); err != nil {
		return Outcome{Action: ActionSkipped}, fmt.Errorf("failed to create spec directory: %w", err)
	}
	if err := r.storage.CreateFile(full, []byte(res.Template)); err != nil {
		return Outcome{Action: ActionSkipped}, fmt.Errorf("failed to create spec file: %w", err)
	}
	r.logger.Info("spec file created", "path", full)
	return r.openCreated(full)
}

func (r *Resolver) openCreated(path string) (Outcome, error) {
	if err := r.opener.Open(path); err != nil {
		return Outcome{Action: ActionCreated, Path: path}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return Outcome{Action: ActionCreated, Path: path}, nil
}
