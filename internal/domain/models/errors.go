package models

import "errors"

// Ошибки предметной области. Транспорт сопоставляет их с HTTP-статусами.
var (
	ErrValidation           = errors.New("validation failed")
	ErrForbidden            = errors.New("forbidden")
	ErrGalleryNotFound      = errors.New("gallery not found")
	ErrFilterNotFound       = errors.New("filter not found")
	ErrBackupNotFound       = errors.New("backup not found")
	ErrFilterCycle          = errors.New("filter parent would create a cycle")
	ErrSlugTaken            = errors.New("slug already taken")
	ErrNothingToMigrate     = errors.New("gallery has no legacy data")
	ErrChunkSequenceExpired = errors.New("chunk sequence expired, restart from chunk 0")
)
