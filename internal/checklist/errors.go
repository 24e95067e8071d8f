package checklist

import "errors"

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrBadRef        = errors.New("malformed cell reference")
	ErrOutOfRange    = errors.New("cell reference outside catalog")
	ErrEmptyCatalog  = errors.New("catalog has no machines or sections")
	ErrDuplicateName = errors.New("duplicate name in catalog")
)
