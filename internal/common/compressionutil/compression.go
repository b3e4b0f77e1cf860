// Package compression reads and writes workflow documents stored compressed
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"github.com/dsnet/compress/bzip2"
	"github.com/ulikunitz/xz"
)

// Format identifies the compression wrapping a document
type Format string

const (
	None  Format = ""
	XZ    Format = "xz"
	BZIP2 Format = "bzip2"
	GZIP  Format = "gzip"
)

var suffixes = []struct {
	suffix string
	format Format
}{
	{".xz", XZ},
	{".bz2", BZIP2},
	{".gz", GZIP},
}

// Suffixes returns the file suffixes recognized as compressed documents
func Suffixes() []string {
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		out = append(out, s.suffix)
	}
	return out
}

// SplitExt strips a compression suffix from path, returning the inner path and the format.
// Paths without a recognized suffix come back unchanged with format None.
func SplitExt(path string) (string, Format) {
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return path[:len(path)-len(s.suffix)], s.format
		}
	}
	return path, None
}

// NewReader wraps r with a decompressor for format
func NewReader(format Format, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case None:
		return io.NopCloser(r), nil
	case XZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowRead, err)
		}
		return io.NopCloser(xzReader), nil
	case BZIP2:
		bzip2Reader, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowRead, err)
		}
		return bzip2Reader, nil
	case GZIP:
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrWorkflowRead, err)
		}
		return gzipReader, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
}

// ReadFile reads path and transparently decompresses it based on its suffix.
// It returns the decompressed bytes and the path with the compression suffix removed.
func ReadFile(path string) ([]byte, string, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer inputFile.Close()

	inner, format := SplitExt(path)
	reader, err := NewReader(format, inputFile)
	if err != nil {
		return nil, "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decompress file: %w", err)
	}
	return data, inner, nil
}

// WriteFile compresses data according to the suffix of path and writes it there
func WriteFile(path string, data []byte, perm os.FileMode) error {
	_, format := SplitExt(path)
	encoded, err := Compress(format, data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, perm)
}

// Compress encodes data with format
func Compress(format Format, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch format {
	case None:
		return append([]byte(nil), data...), nil
	case XZ:
		w, err = xz.NewWriter(&buf)
	case BZIP2:
		w, err = bzip2.NewWriter(&buf, nil)
	case GZIP:
		w = gzip.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedCompression, format)
	}
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	return buf.Bytes(), nil
}
