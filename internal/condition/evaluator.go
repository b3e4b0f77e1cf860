// Package condition evaluates step guard expressions.
//
// The grammar is deliberately small: an integer comparison, a string equality test or a
// boolean literal, evaluated after the context scope's variables have been substituted
// into the text. Anything else is unparsable and handled by UnparsableConditionPolicy.
package condition

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
)

// UnparsableConditionPolicy decides what an unparsable condition evaluates to
type UnparsableConditionPolicy int

const (
	// ExecuteAnyway runs the step and logs a warning. A typo in a condition never
	// silently drops a step, but a broken condition also never stops one.
	ExecuteAnyway UnparsableConditionPolicy = iota

	// SkipStep treats an unparsable condition as false. This changes the default
	// behavior and must be opted into.
	SkipStep
)

// String makes UnparsableConditionPolicy satisfy the fmt.Stringer interface.
func (p UnparsableConditionPolicy) String() string {
	switch p {
	case SkipStep:
		return "skip"
	default:
		return "execute"
	}
}

// ParsePolicy maps a configuration value to a policy
func ParsePolicy(s string) (UnparsableConditionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "execute", "execute_anyway", "run":
		return ExecuteAnyway, nil
	case "skip", "skip_step":
		return SkipStep, nil
	default:
		return ExecuteAnyway, fmt.Errorf("unknown unparsable condition policy %q", s)
	}
}

// Form records which grammar rule matched
type Form int

const (
	FormEmpty Form = iota
	FormNumeric
	FormString
	FormBoolean
	FormUnparsable
)

// String makes Form satisfy the fmt.Stringer interface.
func (f Form) String() string {
	switch f {
	case FormEmpty:
		return "empty"
	case FormNumeric:
		return "numeric"
	case FormString:
		return "string"
	case FormBoolean:
		return "boolean"
	default:
		return "unparsable"
	}
}

// Result is the outcome of one evaluation
type Result struct {
	Value    bool
	Form     Form
	Expanded string // condition text after variable substitution
	Warning  string // set when the condition was unparsable
}

// ErrUnparsable is returned by Check
var ErrUnparsable = errors.New("unparsable condition")

var (
	numericPattern = regexp.MustCompile(`^\s*(-?\d+)\s*(>=|<=|==|!=|=|>|<)\s*(-?\d+)\s*$`)
	stringPattern  = regexp.MustCompile(`^\s*("[^"]*"|'[^']*'|[^\s=!<>"']+)\s*(==|!=|=)\s*("[^"]*"|'[^']*'|[^\s=!<>"']+)\s*$`)
	// any comparison, used by Check where operands may still be variable references
	comparisonPattern = regexp.MustCompile(`^\s*("[^"]*"|'[^']*'|[^\s=!<>"']+)\s*(>=|<=|==|!=|=|>|<)\s*("[^"]*"|'[^']*'|[^\s=!<>"']+)\s*$`)
	variablePattern   = regexp.MustCompile(`^\{?[A-Za-z_][A-Za-z0-9_]*\}?$`)
)

// Evaluator evaluates conditions against a context scope
type Evaluator struct {
	Policy UnparsableConditionPolicy
}

// NewEvaluator creates an evaluator with the given policy
func NewEvaluator(policy UnparsableConditionPolicy) *Evaluator {
	return &Evaluator{Policy: policy}
}

// Evaluate returns whether a step guarded by condition should run
func (e *Evaluator) Evaluate(condition string, ctx *scope.Scope) bool {
	return e.EvaluateDetailed(condition, ctx).Value
}

// EvaluateDetailed evaluates condition and reports which rule matched
func (e *Evaluator) EvaluateDetailed(condition string, ctx *scope.Scope) Result {
	if strings.TrimSpace(condition) == "" {
		return Result{Value: true, Form: FormEmpty}
	}

	expanded := Expand(condition, ctx)

	if m := numericPattern.FindStringSubmatch(expanded); m != nil {
		left, _ := strconv.Atoi(m[1])
		right, _ := strconv.Atoi(m[3])
		return Result{Value: compareInts(left, m[2], right), Form: FormNumeric, Expanded: expanded}
	}

	if m := stringPattern.FindStringSubmatch(expanded); m != nil {
		equal := unquote(m[1]) == unquote(m[3])
		if m[2] == "!=" {
			equal = !equal
		}
		return Result{Value: equal, Form: FormString, Expanded: expanded}
	}

	if b, ok := scope.ParseBool(unquote(strings.TrimSpace(expanded))); ok {
		return Result{Value: b, Form: FormBoolean, Expanded: expanded}
	}

	warning := fmt.Sprintf("unparsable condition %q", condition)
	value := e.Policy == ExecuteAnyway
	logger.LogWarn("Could not parse condition, applying policy", map[string]interface{}{
		"condition": condition,
		"expanded":  expanded,
		"policy":    e.Policy.String(),
		"result":    value,
	})
	return Result{Value: value, Form: FormUnparsable, Expanded: expanded, Warning: warning}
}

// Expand substitutes every variable bound in ctx into condition. Names match
// case-insensitively as whole words, bare or wrapped in braces. Substitution is a
// single pass, so a value containing another variable name is left alone.
func Expand(condition string, ctx *scope.Scope) string {
	if ctx == nil || ctx.Len() == 0 {
		return condition
	}

	return keyPattern(ctx.Keys()).ReplaceAllStringFunc(condition, func(token string) string {
		return ctx.Get(strings.Trim(token, "{}"))
	})
}

// keyPatterns caches the substitution pattern per key set. Runs of one workflow bind
// the same names, so the set stays small.
var keyPatterns sync.Map

// keyPattern matches any of keys, bare or in braces
func keyPattern(keys []string) *regexp.Regexp {
	// longest first so "counter_total" wins over "counter"
	sort.SliceStable(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = regexp.QuoteMeta(k)
	}
	alternation := strings.Join(quoted, "|")

	if cached, ok := keyPatterns.Load(alternation); ok {
		return cached.(*regexp.Regexp)
	}
	pattern := regexp.MustCompile(`(?i)\{(?:` + alternation + `)\}|\b(?:` + alternation + `)\b`)
	actual, _ := keyPatterns.LoadOrStore(alternation, pattern)
	return actual.(*regexp.Regexp)
}

// Check reports whether condition is syntactically acceptable without resolving any
// variables. Bare identifiers and {identifier} references are accepted as operands.
func Check(condition string) error {
	trimmed := strings.TrimSpace(condition)
	if trimmed == "" {
		return nil
	}

	if m := comparisonPattern.FindStringSubmatch(trimmed); m != nil {
		switch m[2] {
		case ">", ">=", "<", "<=":
			for _, operand := range []string{m[1], m[3]} {
				if !isIntegerOperand(operand) {
					return fmt.Errorf("%w: %q: operand %q cannot be compared with %s", ErrUnparsable, condition, operand, m[2])
				}
			}
		}
		return nil
	}

	if _, ok := scope.ParseBool(unquote(trimmed)); ok {
		return nil
	}
	if variablePattern.MatchString(trimmed) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnparsable, condition)
}

func isIntegerOperand(operand string) bool {
	if _, err := strconv.Atoi(operand); err == nil {
		return true
	}
	return variablePattern.MatchString(operand)
}

func compareInts(left int, op string, right int) bool {
	switch op {
	case ">":
		return left > right
	case ">=":
		return left >= right
	case "<":
		return left < right
	case "<=":
		return left <= right
	case "!=":
		return left != right
	default: // "==", "="
		return left == right
	}
}

func unquote(s string) string {
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		return s[1 : len(s)-1]
	}
	return s
}
