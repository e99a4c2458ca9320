package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrDraft    = errors.New("entity is a draft")
)
