package artisan

import "errors"

var (
	ErrArtisanNotFound = errors.New("artisan not found")
	ErrSlugExists      = errors.New("artisan slug already exists")
	ErrNoChanges       = errors.New("no artisan fields to update")
	ErrForbidden       = errors.New("not allowed to edit this artisan")
)
