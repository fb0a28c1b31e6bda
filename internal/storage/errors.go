package storage

import "errors"

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists запись нарушает ограничение уникальности.
	ErrAlreadyExists = errors.New("record already exists")
)
