// Package search holds the catalog filter state, its URL representation and
// the debounced pipeline that turns filter changes into result fetches.
package search

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

type Sort string

const (
	SortFeatured  Sort = "featured"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNewest    Sort = "newest"
	SortRating    Sort = "rating"
)

func (s Sort) Valid() bool {
	switch s {
	case SortFeatured, SortPriceAsc, SortPriceDesc, SortNewest, SortRating:
		return true
	}
	return false
}

// URL parameter names.
const (
	ParamQuery       = "q"
	ParamCategory    = "category"
	ParamSubcategory = "subcategory"
	ParamArtisan     = "artisan"
	ParamMinPrice    = "min_price"
	ParamMaxPrice    = "max_price"
	ParamSort        = "sort"
	ParamPage        = "page"
)

// Filters is the single source of truth of a catalog search. Set facets are
// sorted and de-duplicated, nil price bounds mean unbounded.
type Filters struct {
	Query         string   `json:"q"`
	Categories    []string `json:"categories,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
	Artisans      []string `json:"artisans,omitempty"`
	MinPrice      *float64 `json:"minPrice,omitempty"`
	MaxPrice      *float64 `json:"maxPrice,omitempty"`
	Sort          Sort     `json:"sort"`
	Page          int      `json:"page"`
}

func Defaults() Filters {
	return Filters{Sort: SortFeatured, Page: 1}
}

// Normalize returns the canonical form of f.
func (f Filters) Normalize() Filters {
	out := Filters{
		Query:         strings.TrimSpace(f.Query),
		Categories:    normalizeSet(f.Categories),
		Subcategories: normalizeSet(f.Subcategories),
		Artisans:      normalizeSet(f.Artisans),
		MinPrice:      normalizePrice(f.MinPrice),
		MaxPrice:      normalizePrice(f.MaxPrice),
		Sort:          f.Sort,
		Page:          f.Page,
	}
	if !out.Sort.Valid() {
		out.Sort = SortFeatured
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.MinPrice != nil && out.MaxPrice != nil && *out.MinPrice > *out.MaxPrice {
		out.MinPrice, out.MaxPrice = out.MaxPrice, out.MinPrice
	}
	return out
}

func (f Filters) Equal(o Filters) bool {
	return f.Query == o.Query &&
		slices.Equal(f.Categories, o.Categories) &&
		slices.Equal(f.Subcategories, o.Subcategories) &&
		slices.Equal(f.Artisans, o.Artisans) &&
		pricesEqual(f.MinPrice, o.MinPrice) &&
		pricesEqual(f.MaxPrice, o.MaxPrice) &&
		f.Sort == o.Sort &&
		f.Page == o.Page
}

// SameFacets compares everything but the page.
func (f Filters) SameFacets(o Filters) bool {
	f.Page, o.Page = 1, 1
	return f.Equal(o)
}

func (f Filters) IsDefault() bool {
	return f.Normalize().Equal(Defaults())
}

// Values serializes the normalized filters, omitting defaults. Set facets
// use one repeated key per value.
func (f Filters) Values() url.Values {
	n := f.Normalize()
	v := url.Values{}

	if n.Query != "" {
		v.Set(ParamQuery, n.Query)
	}
	for _, id := range n.Categories {
		v.Add(ParamCategory, id)
	}
	for _, id := range n.Subcategories {
		v.Add(ParamSubcategory, id)
	}
	for _, id := range n.Artisans {
		v.Add(ParamArtisan, id)
	}
	if n.MinPrice != nil {
		v.Set(ParamMinPrice, formatPrice(*n.MinPrice))
	}
	if n.MaxPrice != nil {
		v.Set(ParamMaxPrice, formatPrice(*n.MaxPrice))
	}
	if n.Sort != SortFeatured {
		v.Set(ParamSort, string(n.Sort))
	}
	if n.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(n.Page))
	}
	return v
}

// Encode returns the query string (keys sorted), empty for default filters.
func (f Filters) Encode() string {
	return f.Values().Encode()
}

// Decode merges URL parameters over the defaults. Unparseable values are
// ignored rather than rejected so a hand-edited link still loads.
func Decode(v url.Values) Filters {
	f := Defaults()

	f.Query = v.Get(ParamQuery)
	f.Categories = v[ParamCategory]
	f.Subcategories = v[ParamSubcategory]
	f.Artisans = v[ParamArtisan]
	f.MinPrice = parsePrice(v.Get(ParamMinPrice))
	f.MaxPrice = parsePrice(v.Get(ParamMaxPrice))

	if s := Sort(v.Get(ParamSort)); s.Valid() {
		f.Sort = s
	}
	if p, err := strconv.Atoi(v.Get(ParamPage)); err == nil && p > 0 {
		f.Page = p
	}

	return f.Normalize()
}

// ParseQuery decodes a raw query string, with or without the leading '?'.
func ParseQuery(raw string) Filters {
	// url.ParseQuery keeps every pair it could parse, so the error is dropped.
	v, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Decode(v)
}

// normalizeSet splits comma-joined entries, so no normalized value holds a
// comma and repeated keys and comma lists decode the same way.
func normalizeSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizePrice(p *float64) *float64 {
	if p == nil || *p < 0 || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return nil
	}
	v := *p
	return &v
}

func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return normalizePrice(&v)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func pricesEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
