package wishlist

import (
	"time"

	"artisanlink/internal/product"
)

// Entry is one favorite. UserID is 0 for entries kept on the device.
type Entry struct {
	ID        string           `json:"id"`
	UserID    uint             `json:"userId,omitempty"`
	ProductID string           `json:"productId"`
	CreatedAt time.Time        `json:"createdAt"`
	Product   *product.Product `json:"product,omitempty"`
}

type AddResult struct {
	Entry          Entry `json:"entry"`
	AlreadyPresent bool  `json:"alreadyPresent"`
}

// storedEntry is the local blob shape, without the snapshot.
type storedEntry struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"userId,omitempty"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}
