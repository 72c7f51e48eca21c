// Package testutil builds yum repositories and mirrors for tests.
package testutil

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/yumsync/pkg/repomd"
)

// DefaultRevision is written into fixture repomd.xml files.
const DefaultRevision = "1700000000"

// FixtureFile is one metadata file of a fixture repository.
type FixtureFile struct {
	Kind repomd.Kind
	// Href is relative to the repository root.
	Href string
	// Content is what is stored on disk.
	Content []byte
	// Plain is the uncompressed content when Content is gzip, else nil.
	Plain []byte
	// ChecksumType and Checksum are what repomd.xml declares. An empty
	// Checksum omits the element.
	ChecksumType string
	Checksum     string
}

// FixtureRepo is a yum repository on disk.
type FixtureRepo struct {
	Dir      string
	Revision string
	Files    map[repomd.Kind]*FixtureFile
	// Repomd is the content of repodata/repomd.xml.
	Repomd []byte
}

// FixtureOption customizes NewFixtureRepo.
type FixtureOption func(*fixtureOptions)

type fixtureOptions struct {
	kinds      []repomd.Kind
	revision   string
	gzip       bool
	overrides  map[repomd.Kind]func(*FixtureFile)
	extraTypes []string
}

// WithKinds selects the kinds present in the repository.
func WithKinds(kinds ...repomd.Kind) FixtureOption {
	return func(o *fixtureOptions) { o.kinds = kinds }
}

// WithRevision sets the repomd revision.
func WithRevision(rev string) FixtureOption {
	return func(o *fixtureOptions) { o.revision = rev }
}

// WithGzip stores the files gzip-compressed and declares open-checksums.
func WithGzip() FixtureOption {
	return func(o *fixtureOptions) { o.gzip = true }
}

// WithFile lets a test alter a file record before repomd.xml is rendered.
func WithFile(k repomd.Kind, fn func(*FixtureFile)) FixtureOption {
	return func(o *fixtureOptions) { o.overrides[k] = fn }
}

// WithUnknownType adds a <data> entry of a type outside the kind table.
func WithUnknownType(name string) FixtureOption {
	return func(o *fixtureOptions) { o.extraTypes = append(o.extraTypes, name) }
}

// NewFixtureRepo writes a repository into a temporary directory. By default
// it holds primary, filelists and other with sha256 checksums.
func NewFixtureRepo(t *testing.T, opts ...FixtureOption) *FixtureRepo {
	t.Helper()
	o := &fixtureOptions{
		kinds:     []repomd.Kind{repomd.Primary, repomd.Filelists, repomd.Other},
		revision:  DefaultRevision,
		overrides: make(map[repomd.Kind]func(*FixtureFile)),
	}
	for _, opt := range opts {
		opt(o)
	}

	repo := &FixtureRepo{
		Dir:      t.TempDir(),
		Revision: o.revision,
		Files:    make(map[repomd.Kind]*FixtureFile),
	}

	for _, k := range o.kinds {
		plain := []byte(fmt.Sprintf("<%s>fixture %s metadata</%s>\n", k, k, k))
		ff := &FixtureFile{Kind: k, ChecksumType: "sha256"}
		if o.gzip {
			ff.Plain = plain
			ff.Content = gzipBytes(t, plain)
			ff.Href = fmt.Sprintf("repodata/%s-%s.xml.gz", SHA256Hex(ff.Content)[:12], k)
		} else {
			ff.Content = plain
			ff.Href = fmt.Sprintf("repodata/%s-%s.xml", SHA256Hex(ff.Content)[:12], k)
		}
		ff.Checksum = SHA256Hex(ff.Content)
		if fn, ok := o.overrides[k]; ok {
			fn(ff)
		}
		repo.Files[k] = ff

		path := filepath.Join(repo.Dir, filepath.FromSlash(ff.Href))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, ff.Content, 0o644); err != nil {
			t.Fatalf("write fixture file: %v", err)
		}
	}

	repo.Repomd = renderRepomd(repo, o)
	repomdPath := filepath.Join(repo.Dir, filepath.FromSlash(repomd.Path))
	if err := os.MkdirAll(filepath.Dir(repomdPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(repomdPath, repo.Repomd, 0o644); err != nil {
		t.Fatalf("write repomd.xml: %v", err)
	}
	return repo
}

// RepomdSHA256 is the sha256 of repodata/repomd.xml.
func (r *FixtureRepo) RepomdSHA256() string {
	return SHA256Hex(r.Repomd)
}

// Path returns the absolute path of the file of kind k.
func (r *FixtureRepo) Path(k repomd.Kind) string {
	return filepath.Join(r.Dir, filepath.FromSlash(r.Files[k].Href))
}

func renderRepomd(repo *FixtureRepo, o *fixtureOptions) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<repomd xmlns="http://linux.duke.edu/metadata/repo" xmlns:rpm="http://linux.duke.edu/metadata/rpm">` + "\n")
	fmt.Fprintf(&b, "  <revision>%s</revision>\n", repo.Revision)
	for _, k := range repomd.AllKindsInOrder() {
		ff, ok := repo.Files[k]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  <data type=%q>\n", k.String())
		if ff.Checksum != "" {
			fmt.Fprintf(&b, "    <checksum type=%q>%s</checksum>\n", ff.ChecksumType, ff.Checksum)
		}
		if ff.Plain != nil {
			fmt.Fprintf(&b, "    <open-checksum type=\"sha256\">%s</open-checksum>\n", SHA256Hex(ff.Plain))
			fmt.Fprintf(&b, "    <open-size>%d</open-size>\n", len(ff.Plain))
		}
		fmt.Fprintf(&b, "    <location href=%q/>\n", ff.Href)
		fmt.Fprintf(&b, "    <timestamp>%s</timestamp>\n", repo.Revision)
		fmt.Fprintf(&b, "    <size>%d</size>\n", len(ff.Content))
		b.WriteString("  </data>\n")
	}
	for _, name := range o.extraTypes {
		fmt.Fprintf(&b, "  <data type=%q>\n    <location href=\"repodata/%s.bin\"/>\n  </data>\n", name, name)
	}
	b.WriteString("</repomd>\n")
	return []byte(b.String())
}

// MetalinkHash is one <hash> entry of a metalink.
type MetalinkHash struct {
	Type  string
	Value string
}

// MetalinkXML renders a metalink document for repomd.xml.
func MetalinkXML(hashes []MetalinkHash, urls []string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<metalink version="3.0" xmlns="http://www.metalinker.org/" type="dynamic">` + "\n")
	b.WriteString(" <files>\n  <file name=\"repomd.xml\">\n")
	b.WriteString("   <verification>\n")
	for _, h := range hashes {
		fmt.Fprintf(&b, "    <hash type=%q>%s</hash>\n", h.Type, h.Value)
	}
	b.WriteString("   </verification>\n   <resources maxconnections=\"1\">\n")
	for i, u := range urls {
		fmt.Fprintf(&b, "    <url protocol=\"http\" type=\"http\" location=\"US\" preference=\"%d\">%s</url>\n", 100-i, u)
	}
	b.WriteString("   </resources>\n  </file>\n </files>\n</metalink>\n")
	return b.String()
}

// WriteFile writes content to name inside a fresh temp directory and
// returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// SHA256Hex returns the hex sha256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	return buf.Bytes()
}
