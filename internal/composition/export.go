package composition

import (
	"bytes"
	"fmt"
	"os"

	compression "github.com/deploymenttheory/go-pipeline-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/common/plistutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
)

// ExportOptions tunes how a workflow document is written
type ExportOptions struct {
	// PlistFormat selects XML or binary output for .plist documents
	PlistFormat plistutil.Format
}

// Encode renders wf as a document of docType (yaml, yml, json, toml or plist).
// Runtime fields such as Source and Digest are not written.
func Encode(wf *Workflow, docType string, opts ExportOptions) ([]byte, error) {
	if wf == nil {
		return nil, fmt.Errorf("%w: workflow is nil", errors.ErrInvalidArgument)
	}
	m := documentMap(wf)

	switch docType {
	case "yaml", "yml", "json", "toml":
		v := newDocumentViper()
		v.SetConfigType(docType)
		if err := v.MergeConfigMap(m); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowEncode, err)
		}
		var buf bytes.Buffer
		if err := v.WriteConfigTo(&buf); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowEncode, err)
		}
		return buf.Bytes(), nil
	case "plist":
		return plistutil.Encode(m, opts.PlistFormat)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, docType)
	}
}

// Export writes wf to path. The encoding follows the extension and an optional
// compression suffix, the same way Parse reads documents.
func Export(wf *Workflow, path string, opts ExportOptions) error {
	inner, format := compression.SplitExt(path)

	data, err := Encode(wf, documentType(inner), opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := compression.WriteFile(path, data, 0o644); err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", errors.ErrPermissionDenied, path)
		}
		return fmt.Errorf("%w: %s: %v", errors.ErrWorkflowEncode, path, err)
	}

	logger.LogInfo("Exported workflow", map[string]interface{}{
		"workflow":    wf.Name,
		"path":        path,
		"compression": string(format),
		"bytes":       len(data),
	})
	return nil
}

// documentMap is the document shape of wf, omitting empty optional fields
func documentMap(wf *Workflow) map[string]interface{} {
	m := map[string]interface{}{
		"name":        wf.Name,
		"description": wf.Description,
	}
	if wf.Version != "" {
		m["version"] = wf.Version
	}

	if len(wf.Settings) > 0 {
		settings := make(map[string]interface{}, len(wf.Settings))
		for k, v := range wf.Settings {
			settings[k] = v
		}
		m["settings"] = settings
	}

	steps := make([]interface{}, 0, len(wf.Steps))
	for _, step := range wf.Steps {
		s := map[string]interface{}{
			"name": step.Name,
			"type": string(step.Type),
		}
		if step.Description != "" {
			s["description"] = step.Description
		}
		if step.Condition != "" {
			s["condition"] = step.Condition
		}
		if len(step.Params) > 0 {
			params := make(map[string]interface{}, len(step.Params))
			for k, v := range step.Params {
				params[k] = v
			}
			s["params"] = params
		}
		steps = append(steps, s)
	}
	m["steps"] = steps

	if len(wf.Hooks) > 0 {
		hooks := make(map[string]interface{}, len(wf.Hooks))
		for point, list := range wf.Hooks {
			commands := make([]interface{}, 0, len(list))
			for _, c := range list {
				commands = append(commands, c)
			}
			hooks[string(point)] = commands
		}
		m["hooks"] = hooks
	}

	return m
}
