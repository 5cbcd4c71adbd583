package moderation

import "errors"

var (
	ErrLogNotFound      = errors.New("modification log not found")
	ErrAlreadyResolved  = errors.New("modification log already resolved")
	ErrTableNotAllowed  = errors.New("table not open to moderation")
	ErrColumnNotAllowed = errors.New("column not open to moderation")
	ErrNoChanges        = errors.New("proposal changes nothing")
	ErrRecordNotFound   = errors.New("moderated record not found")
	ErrSlugTaken        = errors.New("proposed name collides with an existing slug")
)
