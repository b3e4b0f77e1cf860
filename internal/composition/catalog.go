package composition

import (
	"path/filepath"
	"sort"
	"strings"

	compression "github.com/deploymenttheory/go-pipeline-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/common/fsutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
)

// Origin identifies which catalog a workflow came from
type Origin string

const (
	OriginBuiltin Origin = "built-in"
	OriginUser    Origin = "user"
)

// CatalogEntry describes one workflow document found in a catalog directory
type CatalogEntry struct {
	Name   string
	Path   string
	Origin Origin
	Digest string

	// Shadows is set on a user entry whose name matches a built-in workflow.
	// Resolution prefers the built-in one.
	Shadows bool
}

// Catalog enumerates the built-in and user workflow directories
type Catalog struct {
	BuiltinDir string
	UserDir    string
}

// List returns built-in entries followed by user entries, each sorted by name.
// Missing directories are treated as empty.
func (c *Catalog) List() ([]CatalogEntry, error) {
	builtin, err := scanCatalogDir(c.BuiltinDir, OriginBuiltin)
	if err != nil {
		return nil, err
	}
	user, err := scanCatalogDir(c.UserDir, OriginUser)
	if err != nil {
		return nil, err
	}

	builtinNames := make(map[string]bool, len(builtin))
	for _, e := range builtin {
		builtinNames[e.Name] = true
	}
	for i := range user {
		user[i].Shadows = builtinNames[user[i].Name]
	}

	return append(builtin, user...), nil
}

func scanCatalogDir(dir string, origin Origin) ([]CatalogEntry, error) {
	if dir == "" {
		return nil, nil
	}

	files, err := fsutil.ListFiles(dir)
	if err != nil {
		return nil, err
	}

	var entries []CatalogEntry
	for _, path := range files {
		name, ok := workflowName(filepath.Base(path))
		if !ok {
			continue
		}

		entry := CatalogEntry{Name: name, Path: path, Origin: origin}
		if data, _, err := compression.ReadFile(path); err == nil {
			entry.Digest = cryptoutil.DocumentDigest(data)
		} else {
			logger.LogWarn("Unable to read catalog entry", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// workflowName strips a recognized document extension from a file name
func workflowName(file string) (string, bool) {
	lower := strings.ToLower(file)
	exts := DocumentExtensions()
	// longest first so "flow.yaml.xz" is not matched as ".xz" alone
	sort.SliceStable(exts, func(i, j int) bool { return len(exts[i]) > len(exts[j]) })
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) && len(file) > len(ext) {
			return file[:len(file)-len(ext)], true
		}
	}
	return "", false
}
