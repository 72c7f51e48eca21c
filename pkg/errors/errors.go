// Package errors defines the error taxonomy shared by the yumsync packages.
// Callers match on the sentinels with errors.Is; every layer adds context
// with Wrap or Wrapf instead of replacing the sentinel.
package errors

import "fmt"

// Common error types.
var (
	// Configuration errors.
	ErrNoURL             = fmt.Errorf("no baseurl or mirrorlist specified")
	ErrBadFuncArg        = fmt.Errorf("bad function argument")
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")
	ErrUnknownKind       = fmt.Errorf("unknown metadata kind")

	// Repository configuration errors.
	ErrEmptyRepositoryName     = fmt.Errorf("repository name cannot be empty")
	ErrRepositoryURLEmpty      = fmt.Errorf("repository needs a baseurl or a mirrorlist")
	ErrRepositoryExists        = fmt.Errorf("repository already exists")
	ErrRepositoryNotFound      = fmt.Errorf("repository not found")
	ErrHTTPTimeoutNegative     = fmt.Errorf("http_timeout cannot be negative")
	ErrMaxParallelInvalid      = fmt.Errorf("max_parallel must be at least 1")
	ErrMaxParallelReposInvalid = fmt.Errorf("max_parallel_repos must be at least 1")
	ErrInvalidLogLevel         = fmt.Errorf("invalid log level")

	// Result state errors.
	ErrAlreadyUsedResult = fmt.Errorf("result object is not clean")
	ErrIncompleteResult  = fmt.Errorf("result object is incomplete for an update")

	// Transport errors.
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrUnsupportedURL = fmt.Errorf("unsupported URL scheme")

	// Parse errors.
	ErrParse         = fmt.Errorf("failed to parse document")
	ErrBadMirrorData = fmt.Errorf("bad mirrorlist or metalink data")

	// Integrity errors.
	ErrUnknownChecksum = fmt.Errorf("unknown checksum algorithm")
	ErrBadChecksum     = fmt.Errorf("checksum mismatch")

	// Local storage errors.
	ErrIO              = fmt.Errorf("input/output error")
	ErrCannotCreateDir = fmt.Errorf("cannot create directory")
	ErrNotLocal        = fmt.Errorf("repository is not local")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrEmptyRepositoryNameWithIndex is a helper to create a wrapped error with the repository index.
func ErrEmptyRepositoryNameWithIndex(i int) error {
	return fmt.Errorf("repository %d: %w", i, ErrEmptyRepositoryName)
}

// ErrRepositoryURLEmptyWithName is a helper to create a wrapped error with the repository name.
func ErrRepositoryURLEmptyWithName(name string) error {
	return fmt.Errorf("repository '%s': %w", name, ErrRepositoryURLEmpty)
}

// ErrRepositoryExistsWithName is a helper to create a wrapped error with the repository name.
func ErrRepositoryExistsWithName(name string) error {
	return fmt.Errorf("repository '%s': %w", name, ErrRepositoryExists)
}

// ErrRepositoryNotFoundWithName creates an error for when a repository with the given name is not found.
func ErrRepositoryNotFoundWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrRepositoryNotFound, name)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: error, warn, info, debug", ErrInvalidLogLevel, level)
}

// ErrUnknownKindWithName reports a metadata kind name that is not in the kind table.
func ErrUnknownKindWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownKind, name)
}
