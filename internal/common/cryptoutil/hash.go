// Package cryptoutil provides content digests used to fingerprint workflow documents
package cryptoutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strings"

	commonerrors "github.com/deploymenttheory/go-pipeline-composer/internal/utils/errors"
	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	// SHA256 algorithm
	SHA256 HashAlgorithm = "sha256"

	// BLAKE2b256 algorithm, used for document digests
	BLAKE2b256 HashAlgorithm = "blake2b-256"
)

// Hasher computes hex digests
type Hasher interface {
	// Hash hashes the provided data
	Hash(data []byte) string

	// HashReader hashes data from a reader
	HashReader(reader io.Reader) (string, error)

	// Algorithm reports which algorithm the hasher uses
	Algorithm() HashAlgorithm
}

type hasherImpl struct {
	algorithm HashAlgorithm
	newHash   func() hash.Hash
}

// NewHasher creates a new Hasher for the specified algorithm
func NewHasher(algorithm HashAlgorithm) (Hasher, error) {
	var newHashFunc func() hash.Hash

	switch HashAlgorithm(strings.ToLower(string(algorithm))) {
	case SHA256:
		newHashFunc = sha256.New
	case BLAKE2b256:
		newHashFunc = func() hash.Hash {
			// New256 only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)
			return h
		}
	default:
		return nil, fmt.Errorf("%w: unsupported hash algorithm '%s'", commonerrors.ErrInvalidArgument, algorithm)
	}

	return &hasherImpl{algorithm: algorithm, newHash: newHashFunc}, nil
}

func (h *hasherImpl) Algorithm() HashAlgorithm {
	return h.algorithm
}

// Hash hashes the provided data
func (h *hasherImpl) Hash(data []byte) string {
	hasher := h.newHash()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashReader hashes data from a reader
func (h *hasherImpl) HashReader(reader io.Reader) (string, error) {
	hasher := h.newHash()
	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("hash operation failed: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// DocumentDigest fingerprints raw document bytes as "blake2b-256:<hex>"
func DocumentDigest(data []byte) string {
	return string(BLAKE2b256) + ":" + documentHasher.Hash(data)
}

// BLAKE2b256 is always supported
var documentHasher, _ = NewHasher(BLAKE2b256)

// ShortDigest trims a digest produced by DocumentDigest to its first n hex characters
func ShortDigest(digest string, n int) string {
	if i := strings.IndexByte(digest, ':'); i >= 0 {
		digest = digest[i+1:]
	}
	if len(digest) > n {
		return digest[:n]
	}
	return digest
}
