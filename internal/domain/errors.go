package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrDuplicate   = errors.New("already exists")
	ErrPermission  = errors.New("permission denied")
	ErrRegionInUse = errors.New("region is referenced by dealers")
)
