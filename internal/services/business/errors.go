package business

import "errors"

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrNotAdmin         = errors.New("only a business admin can manage members")
	ErrInvalidRole      = errors.New("invalid membership role")
	ErrAccessDenied     = errors.New("access denied for this business")
)
