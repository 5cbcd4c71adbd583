package moderation

import (
	"testing"

	"artisanlink/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestChangedFields(t *testing.T) {
	old := map[string]any{"name": "A", "bio": "same", "location": nil}
	next := map[string]any{"name": "B", "bio": "same", "location": "Fès", "website": nil}

	assert.Equal(t, []string{"location", "name"}, ChangedFields(old, next))
}

func TestChangedFields_NestedValuesCompareByJSON(t *testing.T) {
	old := map[string]any{"links": map[string]any{"b": 1.0, "a": "x"}}
	same := map[string]any{"links": map[string]any{"a": "x", "b": 1.0}}
	diff := map[string]any{"links": map[string]any{"a": "y", "b": 1.0}}

	assert.Empty(t, ChangedFields(old, same))
	assert.Equal(t, []string{"links"}, ChangedFields(old, diff))
}

func TestChangedFields_EmptyIsNotNil(t *testing.T) {
	got := ChangedFields(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildLiveUpdate(t *testing.T) {
	t.Run("Whitelisted columns", func(t *testing.T) {
		query, args, err := buildLiveUpdate(&Log{
			TableName: "artisans",
			RecordID:  "a1",
			NewValues: map[string]any{"name": "B", "bio": "Tisserande"},
		})

		assert.NoError(t, err)
		assert.Equal(t, "UPDATE artisans SET bio = $1, name = $2, slug = $3, updated_at = NOW() WHERE id = $4", query)
		assert.Equal(t, []any{"Tisserande", "B", "b", "a1"}, args)
	})

	t.Run("Rename re-slugs like a direct edit", func(t *testing.T) {
		query, args, err := buildLiveUpdate(&Log{
			TableName: "artisans",
			RecordID:  "a1",
			NewValues: map[string]any{"name": "Atelier Élodie & Fils"},
		})

		assert.NoError(t, err)
		assert.Equal(t, "UPDATE artisans SET name = $1, slug = $2, updated_at = NOW() WHERE id = $3", query)
		assert.Equal(t, []any{"Atelier Élodie & Fils", utils.Slugify("Atelier Élodie & Fils", ""), "a1"}, args)
		assert.Equal(t, "atelier-elodie-fils", args[1])
	})

	t.Run("Other fields keep the slug", func(t *testing.T) {
		query, _, err := buildLiveUpdate(&Log{
			TableName: "artisans",
			RecordID:  "a1",
			NewValues: map[string]any{"bio": "Tisserande"},
		})

		assert.NoError(t, err)
		assert.NotContains(t, query, "slug")
	})

	t.Run("Unknown table", func(t *testing.T) {
		_, _, err := buildLiveUpdate(&Log{TableName: "users", NewValues: map[string]any{"role": "ADMIN"}})
		assert.ErrorIs(t, err, ErrTableNotAllowed)
	})

	t.Run("Protected column", func(t *testing.T) {
		_, _, err := buildLiveUpdate(&Log{TableName: "artisans", NewValues: map[string]any{"is_verified": true}})
		assert.ErrorIs(t, err, ErrColumnNotAllowed)
	})
}
