package blog

import "errors"

var (
	ErrPostNotFound = errors.New("blog post not found")
	ErrSlugExists   = errors.New("blog post slug already exists")
	ErrNoChanges    = errors.New("no blog post fields to update")
)
