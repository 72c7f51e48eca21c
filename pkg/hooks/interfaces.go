//go:generate mockgen -destination=mocks/manager.go -package=mocks . Manager

package hooks

import "context"

// Manager defines the interface for managing hooks.
type Manager interface {
	// Execute runs the hook of the given type, if one is registered.
	Execute(ctx context.Context, hookType HookType, sc SyncContext) error

	// AddHook adds or replaces the hook of hook.Type.
	AddHook(hook Hook) error

	// HasHook checks if a hook of the specified type exists.
	HasHook(hookType HookType) bool
}
