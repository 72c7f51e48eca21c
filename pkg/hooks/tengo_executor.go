// Package hooks runs user supplied tengo scripts around repository syncs.
package hooks

import (
	"context"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/glorpus-work/yumsync/pkg/errors"
)

// scriptModules are the tengo standard modules scripts may import.
var scriptModules = []string{"fmt", "os", "text", "times", "json"}

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	hooks map[HookType]Hook
	mutex sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		hooks: make(map[HookType]Hook),
	}
}

// Execute runs the hook of hookType with the globals of sc. A missing hook
// is not an error. A script reports failure by assigning a non-empty
// string or an error value to the global err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, sc SyncContext) error {
	e.mutex.RLock()
	hook, exists := e.hooks[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	script := tengo.NewScript([]byte(hook.Content))
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	files := make(map[string]interface{}, len(sc.Files))
	for k, v := range sc.Files {
		files[k] = v
	}
	globals := map[string]interface{}{
		"repoName":         sc.RepoName,
		"destDir":          sc.DestDir,
		"baseURL":          sc.BaseURL,
		"mirror":           sc.Mirror,
		"revision":         sc.Revision,
		"previousRevision": sc.PreviousRevision,
		"files":            files,
		"err":              "",
	}
	for k, v := range sc.Vars {
		globals[k] = v
	}
	for name, value := range globals {
		if err := script.Add(name, value); err != nil {
			return errors.Wrapf(errors.ErrHookExecution, "%s: add %s: %v", hook.Source, name, err)
		}
	}

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrHookExecution, "%s %s: %v", hookType, hook.Source, err)
	}

	switch v := compiled.Get("err").Value().(type) {
	case error:
		return errors.Wrapf(errors.ErrHookScript, "%s: %v", hookType, v)
	case string:
		if v != "" {
			return errors.Wrapf(errors.ErrHookScript, "%s: %s", hookType, v)
		}
	}
	return nil
}

// AddHook adds or replaces the hook of hook.Type.
func (e *TengoExecutor) AddHook(hook Hook) error {
	if hook.Type == "" {
		return ErrHookTypeEmpty
	}
	if hook.Type != PreSync && hook.Type != PostSync {
		return ErrUnsupportedHookType(hook.Type)
	}
	if hook.Source == "" {
		hook.Source = string(hook.Type)
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.hooks[hook.Type] = hook
	return nil
}

// RemoveHook removes the hook of the specified type.
func (e *TengoExecutor) RemoveHook(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.hooks, hookType)
}

// HasHook checks if a hook of the specified type exists.
func (e *TengoExecutor) HasHook(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.hooks[hookType]
	return exists
}
