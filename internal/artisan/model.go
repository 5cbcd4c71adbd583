package artisan

import "time"

type Artisan struct {
	ID         string     `json:"id"`
	UserID     *uint      `json:"userId,omitempty"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Bio        *string    `json:"bio,omitempty"`
	Location   *string    `json:"location,omitempty"`
	Specialty  *string    `json:"specialty,omitempty"`
	AvatarURL  *string    `json:"avatarUrl,omitempty"`
	CoverURL   *string    `json:"coverUrl,omitempty"`
	Website    *string    `json:"website,omitempty"`
	IsVerified bool       `json:"isVerified"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

type CreateInput struct {
	UserID    *uint   `json:"userId"`
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Bio       *string `json:"bio" validate:"omitempty,max=4000"`
	Location  *string `json:"location" validate:"omitempty,max=120"`
	Specialty *string `json:"specialty" validate:"omitempty,max=120"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
	CoverURL  *string `json:"coverUrl" validate:"omitempty,url"`
	Website   *string `json:"website" validate:"omitempty,url"`
}

// UpdateInput is a partial patch. IsVerified is reserved to admins.
type UpdateInput struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=120"`
	Bio        *string `json:"bio" validate:"omitempty,max=4000"`
	Location   *string `json:"location" validate:"omitempty,max=120"`
	Specialty  *string `json:"specialty" validate:"omitempty,max=120"`
	AvatarURL  *string `json:"avatarUrl" validate:"omitempty,url"`
	CoverURL   *string `json:"coverUrl" validate:"omitempty,url"`
	Website    *string `json:"website" validate:"omitempty,url"`
	IsVerified *bool   `json:"isVerified"`
}

// columns maps the profile fields of the patch to their column names.
func (in UpdateInput) columns() map[string]*string {
	out := map[string]*string{}
	add := func(col string, v *string) {
		if v != nil {
			out[col] = v
		}
	}
	add("name", in.Name)
	add("bio", in.Bio)
	add("location", in.Location)
	add("specialty", in.Specialty)
	add("avatar_url", in.AvatarURL)
	add("cover_url", in.CoverURL)
	add("website", in.Website)
	return out
}

// values renders the current state of the given columns, for moderation
// proposals.
func (a *Artisan) values(cols []string) map[string]any {
	all := map[string]any{
		"name":       a.Name,
		"bio":        strOrNil(a.Bio),
		"location":   strOrNil(a.Location),
		"specialty":  strOrNil(a.Specialty),
		"avatar_url": strOrNil(a.AvatarURL),
		"cover_url":  strOrNil(a.CoverURL),
		"website":    strOrNil(a.Website),
	}
	out := make(map[string]any, len(cols))
	for _, c := range cols {
		out[c] = all[c]
	}
	return out
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// UpdateResult tells whether an edit was applied or queued for review.
type UpdateResult struct {
	Artisan *Artisan `json:"artisan,omitempty"`
	Pending bool     `json:"pending"`
	LogID   string   `json:"logId,omitempty"`
}
