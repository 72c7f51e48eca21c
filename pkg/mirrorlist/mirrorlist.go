// Package mirrorlist parses plain-text yum mirrorlists: one base URL per
// line, with blank lines and '#' comments ignored.
package mirrorlist

import (
	"bufio"
	"io"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/errors"
)

// Mirrorlist holds candidate repository base URLs in document order.
type Mirrorlist struct {
	URLs []string
}

// Parse reads a mirrorlist. An empty list is not an error here.
func Parse(r io.Reader) (*Mirrorlist, error) {
	ml := &Mirrorlist{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ml.URLs = append(ml.URLs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrParse, "mirrorlist: %v", err)
	}
	return ml, nil
}
