// Package repomd models repodata/repomd.xml, the manifest of a yum
// repository: one record per metadata kind with its location and checksums.
package repomd

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/hashicorp/go-version"
)

// Path is the location of the manifest relative to a repository base.
const Path = "repodata/repomd.xml"

// Record is one <data> entry of repomd.xml.
type Record struct {
	LocationHref     string
	Checksum         string
	ChecksumType     string
	OpenChecksum     string
	OpenChecksumType string
	Timestamp        int64
	Size             int64
	OpenSize         int64
}

// Manifest is a parsed repomd.xml. Records for data types outside the kind
// table are not kept.
type Manifest struct {
	Revision string
	records  [kindCount]*Record
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{}
}

// Record returns the record for k, or nil.
func (m *Manifest) Record(k Kind) *Record {
	if m == nil || k < 0 || k >= kindCount {
		return nil
	}
	return m.records[k]
}

// SetRecord stores rec for k, replacing any earlier record.
func (m *Manifest) SetRecord(k Kind, rec *Record) {
	if k < 0 || k >= kindCount {
		return
	}
	m.records[k] = rec
}

// Kinds returns the set of kinds that have a record.
func (m *Manifest) Kinds() Kinds {
	var ks Kinds
	for _, k := range AllKindsInOrder() {
		if m.Record(k) != nil {
			ks = ks.With(k)
		}
	}
	return ks
}

type xmlRepomd struct {
	XMLName  xml.Name  `xml:"repomd"`
	Revision string    `xml:"revision"`
	Data     []xmlData `xml:"data"`
}

type xmlData struct {
	Type         string      `xml:"type,attr"`
	Checksum     xmlChecksum `xml:"checksum"`
	OpenChecksum xmlChecksum `xml:"open-checksum"`
	Location     struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
	Timestamp string `xml:"timestamp"`
	Size      string `xml:"size"`
	OpenSize  string `xml:"open-size"`
}

type xmlChecksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// Parse decodes a repomd.xml document into m, which must be empty or fresh.
func (m *Manifest) Parse(r io.Reader) error {
	var doc xmlRepomd
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return errors.Wrapf(errors.ErrParse, "repomd: %v", err)
	}

	m.Revision = strings.TrimSpace(doc.Revision)
	for _, d := range doc.Data {
		k, ok := KindFromName(d.Type)
		if !ok {
			continue
		}
		m.SetRecord(k, &Record{
			LocationHref:     strings.TrimSpace(d.Location.Href),
			Checksum:         strings.TrimSpace(d.Checksum.Value),
			ChecksumType:     strings.TrimSpace(d.Checksum.Type),
			OpenChecksum:     strings.TrimSpace(d.OpenChecksum.Value),
			OpenChecksumType: strings.TrimSpace(d.OpenChecksum.Type),
			Timestamp:        parseInt(d.Timestamp),
			Size:             parseInt(d.Size),
			OpenSize:         parseInt(d.OpenSize),
		})
	}
	return nil
}

// Parse reads a repomd.xml document into a new manifest.
func Parse(r io.Reader) (*Manifest, error) {
	m := New()
	if err := m.Parse(r); err != nil {
		return nil, err
	}
	return m, nil
}

// CompareRevisions orders two manifest revisions. Revisions are usually
// unix timestamps but some generators emit dotted versions, so both are
// compared as versions. The result is -1, 0 or +1.
func CompareRevisions(a, b string) (int, error) {
	va, err := version.NewVersion(strings.TrimSpace(a))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrParse, "revision %q: %v", a, err)
	}
	vb, err := version.NewVersion(strings.TrimSpace(b))
	if err != nil {
		return 0, errors.Wrapf(errors.ErrParse, "revision %q: %v", b, err)
	}
	return va.Compare(vb), nil
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
