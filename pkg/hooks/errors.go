package hooks

import (
	"fmt"

	"github.com/glorpus-work/yumsync/pkg/errors"
)

// ErrHookTypeEmpty is returned when a hooks type is empty.
var ErrHookTypeEmpty = fmt.Errorf("hooks type cannot be empty")

// ErrUnsupportedHookType is returned for hook types the syncer never runs.
func ErrUnsupportedHookType(hookType HookType) error {
	return errors.Wrapf(errors.ErrHookExecution, "unsupported hooks type: %q", hookType)
}
