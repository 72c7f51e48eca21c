package mirrorlist

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/glorpus-work/yumsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "centos style",
			doc: `# repo = baseos arch = x86_64 country = DE
http://mirror.one/centos/9-stream/BaseOS/x86_64/os/
  http://mirror.two/centos/9-stream/BaseOS/x86_64/os/

https://mirror.three/9-stream/BaseOS/x86_64/os/
`,
			want: []string{
				"http://mirror.one/centos/9-stream/BaseOS/x86_64/os/",
				"http://mirror.two/centos/9-stream/BaseOS/x86_64/os/",
				"https://mirror.three/9-stream/BaseOS/x86_64/os/",
			},
		},
		{
			name: "only comments",
			doc:  "# nothing here\n\n#\n",
			want: nil,
		},
		{
			name: "no trailing newline",
			doc:  "http://a/repo",
			want: []string{"http://a/repo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ml, err := Parse(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ml.URLs)
		})
	}
}

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(iotest.ErrReader(assert.AnError))
	assert.ErrorIs(t, err, errors.ErrParse)
}
