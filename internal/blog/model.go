package blog

import "time"

type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     *string    `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	CoverURL    *string    `json:"coverUrl,omitempty"`
	AuthorID    *uint      `json:"authorId,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

type CreateInput struct {
	Title     string  `json:"title" validate:"required,min=3,max=200"`
	Excerpt   *string `json:"excerpt" validate:"omitempty,max=500"`
	Content   string  `json:"content" validate:"required"`
	CoverURL  *string `json:"coverUrl" validate:"omitempty,url"`
	Published bool    `json:"published"`
}

type UpdateInput struct {
	Title     *string `json:"title" validate:"omitempty,min=3,max=200"`
	Excerpt   *string `json:"excerpt" validate:"omitempty,max=500"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	CoverURL  *string `json:"coverUrl" validate:"omitempty,url"`
	Published *bool   `json:"published"`
}

func (in UpdateInput) HasChanges() bool {
	return in.Title != nil || in.Excerpt != nil || in.Content != nil ||
		in.CoverURL != nil || in.Published != nil
}
