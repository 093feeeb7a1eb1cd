package storage

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrGalleryNotFound = errors.New("gallery not found")
	ErrorNoSuchKey     = errors.New("no such key")
)
