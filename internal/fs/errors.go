package fs

import "errors"

var (
	ErrNotFound    = errors.New("no such file or directory")
	ErrExists      = errors.New("file exists")
	ErrNotDir      = errors.New("not a directory")
	ErrIsDir       = errors.New("is a directory")
	ErrPermission  = errors.New("permission denied")
	ErrNoUser      = errors.New("no acting user")
	ErrUnknownUser = errors.New("unknown user")
)
