package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	PreSync  HookType = "pre-sync"
	PostSync HookType = "post-sync"
)

// Hook represents a hooks script with its type and content.
type Hook struct {
	Type    HookType
	Content string
	// Source names where the script came from, for error messages.
	Source string
}

// SyncContext describes the repository a hook runs for. Every field is
// exposed to the script as a global of the same name in lower camel case.
type SyncContext struct {
	RepoName         string
	DestDir          string
	BaseURL          string
	Mirror           string
	Revision         string
	PreviousRevision string
	// Files maps metadata data types to local paths.
	Files map[string]string
	Vars  map[string]interface{}
}
