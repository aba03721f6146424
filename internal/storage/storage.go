package storage

import "errors"

var (
	ErrDraftNotFound     = errors.New("draft not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
)
