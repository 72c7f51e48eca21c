package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/yumsync/pkg/errors"
)

// HookFileExtension is the extension of hook scripts.
const HookFileExtension = ".tengo"

// LoadFile registers the script at path as the hook of hookType.
func LoadFile(manager Manager, hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(errors.ErrIO, "read hook %s: %v", path, err)
	}
	return manager.AddHook(Hook{Type: hookType, Content: string(content), Source: path})
}

// LoadDir registers <dir>/pre-sync.tengo and <dir>/post-sync.tengo when
// present. Other files are ignored; a missing dir loads nothing.
func LoadDir(manager Manager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(errors.ErrIO, "read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if hookType != PreSync && hookType != PostSync {
			continue
		}
		if err := LoadFile(manager, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// HookTemplate returns a commented starting point for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreSync:
		return `// Pre-sync hook
// Runs before a repository is synchronized. Setting err aborts the sync.
// Available variables:
// - repoName: string - name of the repository
// - destDir: string - directory receiving repodata/
// - baseURL: string - configured base URL
// - previousRevision: string - revision already on disk, or ""
`
	case PostSync:
		return `// Post-sync hook
// Runs after a repository was synchronized and verified.
// Available variables: those of the pre-sync hook, plus
// - revision: string - revision of the new repomd.xml
// - mirror: string - mirror that served repomd.xml, or ""
// - files: map - data type to local path

/*
fmt := import("fmt")
if revision != previousRevision {
    fmt.println(repoName, " moved to revision ", revision)
}
*/
`
	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
