package composition

import (
	"fmt"
	"sort"
	"strings"
)

// StepType identifies what a step does
type StepType string

const (
	StepPDFExtract   StepType = "pdf_extract"
	StepExcelExtract StepType = "excel_extract"
	StepConvert      StepType = "convert"
	StepResize       StepType = "resize"
	StepWatermark    StepType = "watermark"
	StepOCR          StepType = "ocr"
	StepWebhook      StepType = "webhook"
	StepCustom       StepType = "custom"
)

var stepTypes = []StepType{
	StepPDFExtract, StepExcelExtract, StepConvert, StepResize,
	StepWatermark, StepOCR, StepWebhook, StepCustom,
}

// StepTypes returns every known step type in declaration order
func StepTypes() []StepType {
	return append([]StepType(nil), stepTypes...)
}

// Valid reports whether t is a known step type
func (t StepType) Valid() bool {
	for _, known := range stepTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsExtraction reports whether the step pulls files out of a container document
func (t StepType) IsExtraction() bool {
	return t == StepPDFExtract || t == StepExcelExtract
}

// IsImageProcessing reports whether the step transforms already extracted images
func (t StepType) IsImageProcessing() bool {
	return t == StepConvert || t == StepResize || t == StepWatermark
}

// HookPoint names a lifecycle extension point
type HookPoint string

const (
	HookPreWorkflow HookPoint = "pre_workflow"
	HookPostStep    HookPoint = "post_step"
	HookOnSuccess   HookPoint = "on_success"
	HookOnFailure   HookPoint = "on_failure"
)

var hookPoints = []HookPoint{HookPreWorkflow, HookPostStep, HookOnSuccess, HookOnFailure}

// HookPoints returns the known hook points in lifecycle order
func HookPoints() []HookPoint {
	return append([]HookPoint(nil), hookPoints...)
}

// Valid reports whether h is a known hook point
func (h HookPoint) Valid() bool {
	for _, known := range hookPoints {
		if h == known {
			return true
		}
	}
	return false
}

// Params holds a step's parameters keyed by lower-cased name
type Params map[string]string

// NewParams canonicalizes the keys of m
func NewParams(m map[string]string) Params {
	p := make(Params, len(m))
	for k, v := range m {
		p[canonicalKey(k)] = v
	}
	return p
}

func canonicalKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get returns the value for key, matched case-insensitively
func (p Params) Get(key string) (string, bool) {
	v, ok := p[canonicalKey(key)]
	return v, ok
}

// Value returns the value for key or ""
func (p Params) Value(key string) string {
	return p[canonicalKey(key)]
}

// Has reports whether key is present
func (p Params) Has(key string) bool {
	_, ok := p[canonicalKey(key)]
	return ok
}

// Keys returns the parameter names in sorted order
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map copies the parameters into a plain map
func (p Params) Map() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Step represents a single step in the workflow
type Step struct {
	// Position in the owning workflow, starting at 0
	Index int

	// Name of the step (required)
	Name string

	// Type of operation to perform (required, must be a known StepType)
	Type StepType

	// Optional human-readable description of the step
	Description string

	// Optional guard expression; empty means always run
	Condition string

	// Parameters for the step
	Params Params
}

// Label is a human readable reference to the step used in messages
func (s Step) Label() string {
	if s.Name == "" {
		return fmt.Sprintf("step %d", s.Index+1)
	}
	return fmt.Sprintf("step %d (%s)", s.Index+1, s.Name)
}

// Workflow represents a parsed workflow document. It is not modified after parsing.
type Workflow struct {
	// Name of the workflow, also its identity
	Name string

	// Description of the workflow
	Description string

	// Version of the workflow definition
	Version string

	// Free-form settings, bound into the template scope at run time
	Settings map[string]string

	// Ordered list of steps to execute
	Steps []Step

	// Hook commands per hook point. Keys that are not known hook points are kept so
	// validation can report them.
	Hooks map[HookPoint][]string

	// Path of the source document
	Source string

	// Scope the workflow was loaded for
	ScopeID string

	// Content digest of the decoded source document
	Digest string
}

// Step returns the step at index
func (w *Workflow) Step(index int) (Step, bool) {
	if index < 0 || index >= len(w.Steps) {
		return Step{}, false
	}
	return w.Steps[index], true
}

// HookCommands returns the commands registered for point
func (w *Workflow) HookCommands(point HookPoint) []string {
	return w.Hooks[point]
}
