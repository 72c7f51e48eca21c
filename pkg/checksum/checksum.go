// Package checksum maps the checksum algorithm names found in repomd.xml and
// metalink documents to hash implementations and compares file digests.
package checksum

import (
	"crypto/md5"  //nolint:gosec // md5 is still advertised by old repositories
	"crypto/sha1" //nolint:gosec // sha1 is still advertised by old repositories
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/errors"
)

// Type identifies a checksum algorithm. Values are ordered by strength:
// a greater Type is a stronger algorithm.
type Type int

// Known algorithms, weakest first.
const (
	Unknown Type = iota
	MD5
	SHA1
	SHA224
	SHA256
	SHA384
	SHA512
)

var typeNames = map[string]Type{
	"md5":    MD5,
	"sha":    SHA1,
	"sha1":   SHA1,
	"sha224": SHA224,
	"sha256": SHA256,
	"sha384": SHA384,
	"sha512": SHA512,
}

// TypeFromName recognizes an algorithm name. The match is case-insensitive;
// unrecognized names return Unknown.
func TypeFromName(name string) Type {
	if t, ok := typeNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t
	}
	return Unknown
}

// String returns the canonical lowercase name of the algorithm.
func (t Type) String() string {
	switch t {
	case MD5:
		return "md5"
	case SHA1:
		return "sha1"
	case SHA224:
		return "sha224"
	case SHA256:
		return "sha256"
	case SHA384:
		return "sha384"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// New returns a fresh hash for the algorithm, or nil for Unknown.
func (t Type) New() hash.Hash {
	switch t {
	case MD5:
		return md5.New() //nolint:gosec
	case SHA1:
		return sha1.New() //nolint:gosec
	case SHA224:
		return sha256.New224()
	case SHA256:
		return sha256.New()
	case SHA384:
		return sha512.New384()
	case SHA512:
		return sha512.New()
	default:
		return nil
	}
}

// Sum reads r to EOF and returns the lowercase hex digest.
func Sum(t Type, r io.Reader) (string, error) {
	h := t.New()
	if h == nil {
		return "", errors.Wrapf(errors.ErrUnknownChecksum, "checksum type %d", t)
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrapf(errors.ErrIO, "hashing: %v", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Matches reports whether the digest of r equals expected.
func Matches(t Type, r io.Reader, expected string) (bool, error) {
	got, err := Sum(t, r)
	if err != nil {
		return false, err
	}
	return got == normalizeHex(expected), nil
}

// FileMatches opens path and compares its digest with expected.
func FileMatches(t Type, path string, expected string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, errors.Wrapf(errors.ErrIO, "open %s for checksum: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	return Matches(t, f, expected)
}

// SeekerMatches rewinds rs and compares its digest with expected.
func SeekerMatches(t Type, rs io.ReadSeeker, expected string) (bool, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return false, errors.Wrap(errors.ErrIO, err.Error())
	}
	return Matches(t, rs, expected)
}

func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
