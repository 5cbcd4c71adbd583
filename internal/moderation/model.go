package moderation

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Log is a proposed edit of a live row. Pending is its only non-terminal
// status.
type Log struct {
	ID            string         `json:"id"`
	TableName     string         `json:"tableName"`
	RecordID      string         `json:"recordId"`
	OldValues     map[string]any `json:"oldValues"`
	NewValues     map[string]any `json:"newValues"`
	RequestedBy   uint           `json:"requestedBy"`
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	ReviewedAt    *time.Time     `json:"reviewedAt,omitempty"`
	ReviewedBy    *uint          `json:"reviewedBy,omitempty"`
	ChangedFields []string       `json:"changedFields"`
}

type ProposeInput struct {
	TableName   string         `validate:"required"`
	RecordID    string         `validate:"required"`
	OldValues   map[string]any `validate:"required"`
	NewValues   map[string]any `validate:"required,min=1"`
	RequestedBy uint           `validate:"required"`
}

// ChangedFields lists, sorted, the keys of newValues whose JSON encoding
// differs from the same key in oldValues. A key missing from oldValues
// compares as null.
func ChangedFields(oldValues, newValues map[string]any) []string {
	changed := []string{}
	for k, nv := range newValues {
		if !sameJSON(oldValues[k], nv) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

func sameJSON(a, b any) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// slugSources names, per table, the column the slug is derived from.
var slugSources = map[string]string{
	"artisans": "name",
}

// editableColumns lists, per table, the columns a proposal may touch.
var editableColumns = map[string]map[string]bool{
	"artisans": {
		"name":       true,
		"bio":        true,
		"location":   true,
		"specialty":  true,
		"avatar_url": true,
		"cover_url":  true,
		"website":    true,
	},
}

func columnAllowed(table, column string) bool {
	return editableColumns[table][column]
}
