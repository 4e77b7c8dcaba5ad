package coordtag

import "errors"

var (
	ErrTagNotFound      = errors.New("coordinate tag not found")
	ErrMalformedCapture = errors.New("malformed capture")
	ErrModeConflict     = errors.New("tag already exists under the other mode")
	ErrInvalidName      = errors.New("invalid name")
)
