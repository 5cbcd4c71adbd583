package cart

import (
	"encoding/json"

	"artisanlink/internal/product"
)

// LineItem is one cart entry. Quantity is always at least 1.
type LineItem struct {
	ProductID          string            `json:"productId"`
	Quantity           int               `json:"quantity"`
	SelectedVariations map[string]string `json:"selectedVariations,omitempty"`
	Product            *product.Product  `json:"product,omitempty"`
}

// Key identifies the line item: the same product with different
// variations is a different line.
func (li LineItem) Key() string {
	return IdentityKey(li.ProductID, li.SelectedVariations)
}

// IdentityKey joins the product id with the variations serialized with
// sorted keys, so option order never matters. nil and empty maps collide.
func IdentityKey(productID string, variations map[string]string) string {
	if len(variations) == 0 {
		return productID + "|{}"
	}
	b, err := json.Marshal(variations)
	if err != nil {
		return productID + "|{}"
	}
	return productID + "|" + string(b)
}

// storedItem is the persisted shape, without the snapshot.
type storedItem struct {
	ProductID          string            `json:"productId"`
	Quantity           int               `json:"quantity"`
	SelectedVariations map[string]string `json:"selectedVariations,omitempty"`
}

func toStored(items []LineItem) []storedItem {
	out := make([]storedItem, 0, len(items))
	for _, it := range items {
		out = append(out, storedItem{
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			SelectedVariations: it.SelectedVariations,
		})
	}
	return out
}

// fromStored drops invalid entries and folds duplicates by identity key.
func fromStored(stored []storedItem) []LineItem {
	out := make([]LineItem, 0, len(stored))
	index := map[string]int{}
	for _, s := range stored {
		if s.ProductID == "" || s.Quantity < 1 {
			continue
		}
		key := IdentityKey(s.ProductID, s.SelectedVariations)
		if i, ok := index[key]; ok {
			out[i].Quantity += s.Quantity
			continue
		}
		index[key] = len(out)
		out = append(out, LineItem{
			ProductID:          s.ProductID,
			Quantity:           s.Quantity,
			SelectedVariations: s.SelectedVariations,
		})
	}
	return out
}
