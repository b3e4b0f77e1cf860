// Package plistutil reads and writes property-list workflow documents
package plistutil

import (
	"fmt"

	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"howett.net/plist"
)

// Format represents the plist format
type Format int

const (
	// FormatXML is the XML plist format
	FormatXML Format = iota
	// FormatBinary is the binary plist format
	FormatBinary
)

// Decode parses plist bytes in any supported format into a generic map.
// The top-level object must be a dictionary.
func Decode(data []byte) (map[string]interface{}, error) {
	var result map[string]interface{}
	if _, err := plist.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrWorkflowParse, err.Error())
	}
	if result == nil {
		return map[string]interface{}{}, nil
	}
	return result, nil
}

// Encode serializes data in the given plist format
func Encode(data map[string]interface{}, format Format) ([]byte, error) {
	out, err := plist.MarshalIndent(data, toLibraryFormat(format), "\t")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrInvalidArgument, err.Error())
	}
	return out, nil
}

func toLibraryFormat(format Format) int {
	if format == FormatBinary {
		return plist.BinaryFormat
	}
	return plist.XMLFormat
}
