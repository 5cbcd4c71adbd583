package wishlist

import "errors"

var ErrAlreadyPresent = errors.New("product already in wishlist")
