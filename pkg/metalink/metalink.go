// Package metalink parses metalink 3.0 documents as served by MirrorManager
// for yum repositories.
package metalink

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/checksum"
	"github.com/glorpus-work/yumsync/pkg/errors"
)

// DefaultFilename is the file a yum metalink describes.
const DefaultFilename = "repomd.xml"

// URL is one candidate location of the described file.
type URL struct {
	Protocol   string
	Type       string
	Location   string
	Preference int
	URL        string
}

// Metalink is the parsed description of a single file.
type Metalink struct {
	Filename  string
	Timestamp int64
	Size      int64
	Hashes    []checksum.Hint
	URLs      []URL
}

// URLStrings returns the candidate URLs in document order.
func (m *Metalink) URLStrings() []string {
	out := make([]string, 0, len(m.URLs))
	for _, u := range m.URLs {
		out = append(out, u.URL)
	}
	return out
}

type xmlMetalink struct {
	XMLName xml.Name  `xml:"metalink"`
	Files   []xmlFile `xml:"files>file"`
}

type xmlFile struct {
	Name      string    `xml:"name,attr"`
	Timestamp string    `xml:"timestamp"`
	Size      string    `xml:"size"`
	Hashes    []xmlHash `xml:"verification>hash"`
	URLs      []xmlURL  `xml:"resources>url"`
}

type xmlHash struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type xmlURL struct {
	Protocol   string `xml:"protocol,attr"`
	Type       string `xml:"type,attr"`
	Location   string `xml:"location,attr"`
	Preference string `xml:"preference,attr"`
	Value      string `xml:",chardata"`
}

// Parse reads a metalink document and returns the entry for filename.
// An empty filename selects DefaultFilename. A document without a matching
// <file> element is a parse error; a matching element without URLs is not,
// the caller decides what an empty candidate list means.
func Parse(r io.Reader, filename string) (*Metalink, error) {
	if filename == "" {
		filename = DefaultFilename
	}

	var doc xmlMetalink
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(errors.ErrParse, "metalink: %v", err)
	}

	for _, f := range doc.Files {
		if f.Name != filename {
			continue
		}
		return convertFile(f), nil
	}
	return nil, errors.Wrapf(errors.ErrParse, "metalink: no <file name=%q>", filename)
}

func convertFile(f xmlFile) *Metalink {
	ml := &Metalink{
		Filename:  f.Name,
		Timestamp: parseInt(f.Timestamp),
		Size:      parseInt(f.Size),
	}
	for _, h := range f.Hashes {
		ml.Hashes = append(ml.Hashes, checksum.Hint{
			Type:  strings.TrimSpace(h.Type),
			Value: strings.TrimSpace(h.Value),
		})
	}
	for _, u := range f.URLs {
		value := strings.TrimSpace(u.Value)
		if value == "" {
			continue
		}
		ml.URLs = append(ml.URLs, URL{
			Protocol:   u.Protocol,
			Type:       u.Type,
			Location:   u.Location,
			Preference: int(parseInt(u.Preference)),
			URL:        value,
		})
	}
	return ml
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
