package utils

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a command matches exactly one of these
// through errors.Is.
var (
	ErrAddressResolution = errors.New("address resolution failed")
	ErrMetadata          = errors.New("object metadata unavailable")
	ErrTransfer          = errors.New("transfer failed")
	ErrCompose           = errors.New("compose failed")
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidRange   = errors.New("invalid byte range")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Error ties a failure to its kind and, where known, the object it concerns.
type Error struct {
	Kind   error
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func NewError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NewObjectError(kind error, op, bucket, key string, err error) *Error {
	return &Error{Kind: kind, Op: op, Bucket: bucket, Key: key, Err: err}
}
