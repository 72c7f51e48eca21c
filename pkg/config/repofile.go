package config

import (
	"bufio"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/errors"
	"gopkg.in/ini.v1"
)

// archMap translates GOARCH into the rpm $basearch.
var archMap = map[string]string{
	"amd64":   "x86_64",
	"386":     "i386",
	"arm64":   "aarch64",
	"arm":     "armhfp",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
	"riscv64": "riscv64",
}

// osReleasePath is read by DefaultVars.
var osReleasePath = "/etc/os-release"

// DefaultVars returns the yum variables of the running host: releasever
// from VERSION_ID in /etc/os-release and basearch from GOARCH. Values that
// cannot be determined are left out.
func DefaultVars() map[string]string {
	vars := make(map[string]string)
	if arch, ok := archMap[runtime.GOARCH]; ok {
		vars["basearch"] = arch
		vars["arch"] = arch
	}

	file, err := os.Open(osReleasePath)
	if err != nil {
		return vars
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VERSION_ID=") {
			vars["releasever"] = strings.Trim(strings.TrimPrefix(line, "VERSION_ID="), `"`)
			break
		}
	}
	return vars
}

// ImportRepoFile reads a yum .repo file and returns one repository per
// section. $name and ${name} references are replaced from vars.
func ImportRepoFile(path string, vars map[string]string) ([]*RepositoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrIO, "read %s: %v", path, err)
	}
	return ParseRepoFile(data, vars)
}

// ParseRepoFile parses the content of a yum .repo file. A metalink takes
// the place of the mirrorlist. Only the first baseurl is used.
func ParseRepoFile(data []byte, vars map[string]string) ([]*RepositoryConfig, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
		SkipUnrecognizableLines:    true,
	}, data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	expand := varReplacer(vars)
	var repos []*RepositoryConfig
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}

		rc := &RepositoryConfig{
			Name:    section.Name(),
			BaseURL: expand.Replace(firstURL(section.Key("baseurl").String())),
		}
		if link := section.Key("metalink").String(); link != "" {
			rc.MirrorList = expand.Replace(strings.TrimSpace(link))
		} else {
			rc.MirrorList = expand.Replace(strings.TrimSpace(section.Key("mirrorlist").String()))
		}
		if rc.BaseURL == "" && rc.MirrorList == "" {
			return nil, errors.ErrRepositoryURLEmptyWithName(rc.Name)
		}

		enabled := section.Key("enabled").MustBool(true)
		rc.Enabled = &enabled
		if user := section.Key("username").String(); user != "" {
			rc.Auth = &AuthConfig{BasicAuth: &BasicAuth{
				Username: user,
				Password: section.Key("password").String(),
			}}
		}
		repos = append(repos, rc)
	}
	return repos, nil
}

// firstURL returns the first entry of a whitespace or comma separated list.
func firstURL(list string) string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func varReplacer(vars map[string]string) *strings.Replacer {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	// longer names first so $releasever_major is not read as $releasever
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	pairs := make([]string, 0, 4*len(names))
	for _, name := range names {
		pairs = append(pairs, "${"+name+"}", vars[name], "$"+name, vars[name])
	}
	return strings.NewReplacer(pairs...)
}
