// Package composition loads workflow documents into Workflow values.
//
// A reference is resolved in order: a literal path, the built-in catalog, the user
// catalog. Loading only shapes data. Whether a workflow is well formed is decided by
// the validation package.
package composition

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
)

// NotFoundError reports a reference that resolved nowhere
type NotFoundError struct {
	Reference string
	Attempted []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("workflow %q not found (looked in: %s)", e.Reference, strings.Join(e.Attempted, ", "))
}

// Unwrap lets errors.Is match ErrWorkflowNotFound
func (e *NotFoundError) Unwrap() error {
	return errors.ErrWorkflowNotFound
}

// Loader resolves and parses workflow documents
type Loader struct {
	// Directory of workflows shipped with the application
	BuiltinDir string

	// Directory of the user's own workflows
	UserDir string
}

// NewLoader creates a loader for the given catalog directories. Either may be empty.
func NewLoader(builtinDir, userDir string) *Loader {
	return &Loader{BuiltinDir: builtinDir, UserDir: userDir}
}

// Catalog returns a catalog over the loader's directories
func (l *Loader) Catalog() *Catalog {
	return &Catalog{BuiltinDir: l.BuiltinDir, UserDir: l.UserDir}
}

// Resolve maps a reference to the path of a readable document
func (l *Loader) Resolve(reference string) (string, error) {
	if strings.TrimSpace(reference) == "" {
		return "", fmt.Errorf("%w: empty workflow reference", errors.ErrInvalidArgument)
	}

	if fsutil.IsReadableFile(reference) {
		return reference, nil
	}

	attempted := []string{reference}
	for _, dir := range []struct {
		path  string
		label string
	}{
		{l.BuiltinDir, "built-in catalog"},
		{l.UserDir, "user catalog"},
	} {
		if dir.path == "" {
			attempted = append(attempted, "("+dir.label+" not configured)")
			continue
		}
		if path, ok := lookupInDir(dir.path, reference); ok {
			logger.LogDebug("Resolved workflow from catalog", map[string]interface{}{
				"reference": reference,
				"catalog":   dir.label,
				"path":      path,
			})
			return path, nil
		}
		attempted = append(attempted, filepath.Join(dir.path, reference))
	}

	return "", &NotFoundError{Reference: reference, Attempted: attempted}
}

// lookupInDir tries dir/reference and dir/reference<ext> for every known extension.
// References escaping dir are never matched.
func lookupInDir(dir, reference string) (string, bool) {
	base := filepath.Join(dir, reference)
	if rel, err := filepath.Rel(dir, base); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	if fsutil.IsReadableFile(base) {
		return base, true
	}
	for _, ext := range DocumentExtensions() {
		candidate := base + ext
		if fsutil.IsReadableFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Load resolves reference and parses the document it names
func (l *Loader) Load(reference, scopeID string) (*Workflow, error) {
	path, err := l.Resolve(reference)
	if err != nil {
		return nil, err
	}
	return Parse(path, scopeID)
}

// Parse reads the document at path into a Workflow. Missing fields default to empty
// values; steps are indexed by position.
func Parse(path, scopeID string) (*Workflow, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	wf := doc.toWorkflow(scopeID)
	logger.LogDebug("Parsed workflow document", map[string]interface{}{
		"workflow": wf.Name,
		"path":     path,
		"steps":    len(wf.Steps),
	})
	return wf, nil
}

// ParseBytes decodes an in-memory document. docType is a file extension such as
// "yaml" or "json".
func ParseBytes(data []byte, docType, scopeID string) (*Workflow, error) {
	raw, err := decodeDocument(data, strings.TrimPrefix(strings.ToLower(docType), "."))
	if err != nil {
		return nil, err
	}
	doc := &document{raw: *raw}
	return doc.toWorkflow(scopeID), nil
}

// LookupParam returns a step parameter, reading the source document again when the
// in-memory step does not hold it. The re-read is logged as a cache miss.
func (l *Loader) LookupParam(wf *Workflow, index int, key string) (string, bool, error) {
	step, ok := wf.Step(index)
	if !ok {
		return "", false, fmt.Errorf("%w: %d", errors.ErrStepIndexOutOfRange, index)
	}
	if v, ok := step.Params.Get(key); ok {
		return v, true, nil
	}
	if wf.Source == "" {
		return "", false, nil
	}

	logger.LogDebug("Parameter cache miss, re-reading workflow document", map[string]interface{}{
		"workflow": wf.Name,
		"step":     index,
		"param":    key,
		"source":   wf.Source,
	})

	doc, err := readDocument(wf.Source)
	if err != nil {
		return "", false, err
	}
	v, ok := doc.lookupRawParam(index, key)
	return v, ok, nil
}
