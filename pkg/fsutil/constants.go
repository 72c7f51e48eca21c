package fsutil

// File and directory permission constants.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o640 // -rw-r-----

	// FileModeMetadata is used for downloaded metadata files.
	FileModeMetadata = 0o660 // -rw-rw----

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x
	DirModeSecure  = 0o750 // drwxr-x---

	// DirModeRepodata is used for <dest>/repodata.
	DirModeRepodata = 0o775 // drwxrwxr-x
)
