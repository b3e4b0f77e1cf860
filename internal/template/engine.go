// Package template substitutes {name} and {name:format} tokens using a variable scope.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/logger"
	"github.com/deploymenttheory/go-pipeline-composer/internal/scope"
)

var (
	// {name}
	plainPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	// {name:format}
	formattedPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*):([^{}]*)\}`)
	// zero-pad and width integer formats such as d, 3d, 03d
	integerFormat = regexp.MustCompile(`^0?[0-9]*d$`)
	// any token, used for variable extraction
	anyPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)(?::[^{}]*)?\}`)
)

// Substitute replaces template tokens in text.
//
// Plain tokens are replaced first; unbound names become the empty string. Formatted
// tokens are replaced second. Expanded output is never rescanned for new tokens
// beyond these two passes.
func Substitute(text string, s *scope.Scope) string {
	if !strings.Contains(text, "{") {
		return text
	}

	result := plainPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := plainPattern.FindStringSubmatch(token)[1]
		return s.Get(name)
	})

	return formattedPattern.ReplaceAllStringFunc(result, func(token string) string {
		match := formattedPattern.FindStringSubmatch(token)
		return formatValue(match[1], match[2], s)
	})
}

func formatValue(name, format string, s *scope.Scope) string {
	value, _ := s.Lookup(name)

	if integerFormat.MatchString(format) {
		return fmt.Sprintf("%"+format, value.IntOr(0))
	}

	logger.LogWarn("Unsupported template format specifier, using value as-is", map[string]interface{}{
		"variable": name,
		"format":   format,
	})
	return value.String()
}

// SubstituteParams applies Substitute to every parameter value, returning a new map
func SubstituteParams(params map[string]string, s *scope.Scope) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = Substitute(v, s)
	}
	return out
}

// ExtractVariables returns the distinct variable names referenced by text, plain or
// formatted, in order of first appearance.
func ExtractVariables(text string) []string {
	matches := anyPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		name := strings.ToLower(match[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// HasTokens reports whether text contains at least one template token
func HasTokens(text string) bool {
	return anyPattern.MatchString(text)
}
