// errors.go
package settings

import "errors"

var (
	ErrInvalidKey        = errors.New("invalid preference key")
	ErrInvalidKind       = errors.New("invalid preference kind")
	ErrInvalidValue      = errors.New("invalid preference value")
	ErrNotFound          = errors.New("setting not found")
	ErrNotDefined        = errors.New("preference not defined")
	ErrStorageRead       = errors.New("storage read failed")
	ErrStorageWrite      = errors.New("storage write failed")
	ErrExport            = errors.New("settings export failed")
	ErrImport            = errors.New("settings import failed")
	ErrDestructiveAction = errors.New("destructive action failed")
	ErrClosed            = errors.New("aggregator closed")
)
