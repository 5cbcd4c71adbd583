package utils

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRegex  = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRegex = regexp.MustCompile(`-+`)
)

// Slugify lowercases input, strips accents and joins words with dashes.
// When ownerID is set its first segment prefixes the slug so two artisans
// can list products with the same name.
func Slugify(input string, ownerID string) string {
	slug := strings.ToLower(strings.TrimSpace(stripAccents(input)))
	slug = nonAlnumRegex.ReplaceAllString(slug, "-")
	slug = multiDashRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if ownerID == "" {
		return slug
	}
	prefix := strings.Split(ownerID, "-")[0]
	return prefix + "-" + slug
}

func stripAccents(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func StrPtr(s string) *string {
	return &s
}

func ToUint(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	return uint(n), err
}

func ParseUint(s string) uint {
	n, _ := ToUint(s)
	return n
}

// Response is the envelope of every JSON answer.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, Response{Success: false, Message: message})
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
