package composition

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	compression "github.com/deploymenttheory/go-pipeline-composer/internal/common/compressionutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/common/plistutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// documentFormats are the encodings a workflow document may use, each of which may also
// be wrapped in one of the compression suffixes.
var documentFormats = []string{".yaml", ".yml", ".json", ".toml", ".plist"}

// DocumentExtensions lists every file suffix the loader recognizes, most common first
func DocumentExtensions() []string {
	exts := append([]string(nil), documentFormats...)
	for _, f := range documentFormats {
		for _, c := range compression.Suffixes() {
			exts = append(exts, f+c)
		}
	}
	return exts
}

// rawWorkflow mirrors the document shape before normalization
type rawWorkflow struct {
	Name        string                 `mapstructure:"name"`
	Description string                 `mapstructure:"description"`
	Version     string                 `mapstructure:"version"`
	Settings    map[string]interface{} `mapstructure:"settings"`
	Steps       []rawStep              `mapstructure:"steps"`
	Hooks       map[string]interface{} `mapstructure:"hooks"`
}

type rawStep struct {
	Name        string                 `mapstructure:"name"`
	Type        string                 `mapstructure:"type"`
	Description string                 `mapstructure:"description"`
	Condition   string                 `mapstructure:"condition"`
	Params      map[string]interface{} `mapstructure:"params"`
}

// document is a decoded source document
type document struct {
	path   string
	digest string
	raw    rawWorkflow
}

// readDocument reads, decompresses and decodes the document at path
func readDocument(path string) (*document, error) {
	data, inner, err := compression.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrWorkflowNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrWorkflowRead, path, err)
	}

	raw, err := decodeDocument(data, documentType(inner))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &document{
		path:   path,
		digest: cryptoutil.DocumentDigest(data),
		raw:    *raw,
	}, nil
}

// documentType derives the decoder from the file extension, defaulting to YAML
func documentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "yaml"
	}
	return ext[1:]
}

// keyDelimiter replaces viper's "." nesting separator so dotted setting and parameter
// names stay flat.
const keyDelimiter = "::"

func newDocumentViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
}

// decodeDocument shapes document bytes into a rawWorkflow. Absent fields stay zero.
func decodeDocument(data []byte, docType string) (*rawWorkflow, error) {
	v := newDocumentViper()

	switch docType {
	case "yaml", "yml", "json", "toml":
		v.SetConfigType(docType)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowParse, err)
		}
	case "plist":
		m, err := plistutil.Decode(data)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(m); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedFormat, docType)
	}

	raw := &rawWorkflow{}
	if err := v.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowParse, err)
	}
	return raw, nil
}

// toWorkflow normalizes a decoded document into a Workflow
func (d *document) toWorkflow(scopeID string) *Workflow {
	wf := &Workflow{
		Name:        strings.TrimSpace(d.raw.Name),
		Description: strings.TrimSpace(d.raw.Description),
		Version:     strings.TrimSpace(d.raw.Version),
		Settings:    stringMap(d.raw.Settings, "settings"),
		Steps:       make([]Step, 0, len(d.raw.Steps)),
		Hooks:       make(map[HookPoint][]string),
		Source:      d.path,
		ScopeID:     scopeID,
		Digest:      d.digest,
	}

	for i, rs := range d.raw.Steps {
		wf.Steps = append(wf.Steps, Step{
			Index:       i,
			Name:        strings.TrimSpace(rs.Name),
			Type:        StepType(strings.ToLower(strings.TrimSpace(rs.Type))),
			Description: rs.Description,
			Condition:   strings.TrimSpace(rs.Condition),
			Params:      Params(stringMap(rs.Params, fmt.Sprintf("steps[%d].params", i))),
		})
	}

	for key, value := range d.raw.Hooks {
		commands := stringList(value)
		if len(commands) == 0 {
			continue
		}
		wf.Hooks[HookPoint(canonicalKey(key))] = commands
	}

	return wf
}

// stringMap converts decoded values to strings with canonical keys. Lists are
// comma-joined; nested maps cannot be represented and are dropped with a warning.
func stringMap(in map[string]interface{}, where string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		s, ok := scalarString(v)
		if !ok {
			logger.LogWarn("Dropping non-scalar value", map[string]interface{}{
				"field": where + "." + k,
			})
			continue
		}
		out[canonicalKey(k)] = s
	}
	return out
}

func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, err := cast.ToStringE(item)
			if err != nil {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	case map[string]interface{}, map[interface{}]interface{}:
		return "", false
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", false
		}
		return s, true
	}
}

// stringList accepts a list of commands or a single command string
func stringList(v interface{}) []string {
	var items []interface{}
	switch t := v.(type) {
	case nil:
		return nil
	case []interface{}:
		items = t
	case []string:
		return append([]string(nil), t...)
	default:
		items = []interface{}{t}
	}

	var out []string
	for _, item := range items {
		s, err := cast.ToStringE(item)
		if err != nil || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// lookupRawParam finds key in the raw params of step index, case-insensitively
func (d *document) lookupRawParam(index int, key string) (string, bool) {
	if index < 0 || index >= len(d.raw.Steps) {
		return "", false
	}
	want := canonicalKey(key)
	for k, v := range d.raw.Steps[index].Params {
		if canonicalKey(k) != want {
			continue
		}
		return scalarString(v)
	}
	return "", false
}
