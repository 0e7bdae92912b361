package model

import (
	"strings"
	"time"
)

// Submission is one interview experience: who interviewed, where, and the
// questions they were asked.
//
// UserID is set from the authenticated caller at creation and never changes
// afterwards. The JSON name "userId" matches what existing clients read.
type Submission struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Country   string    `json:"country"`
	Questions []string  `json:"questions"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubmissionInput is the payload of POST /api/submissions.
type SubmissionInput struct {
	Name      string   `json:"name"      validate:"required,max=200"`
	Company   string   `json:"company"   validate:"required,max=200"`
	Country   string   `json:"country"   validate:"required,max=200"`
	Questions []string `json:"questions" validate:"required,min=1,dive,required,max=2000"`
}

// Normalize trims surrounding whitespace from every field in place.
func (in *SubmissionInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Company = strings.TrimSpace(in.Company)
	in.Country = strings.TrimSpace(in.Country)
	in.Questions = trimAll(in.Questions)
}

// SubmissionPatch is the payload of PUT /api/submissions/{id}.
//
// Empty scalars mean "keep the current value". A nil or empty Questions
// slice also keeps the current questions; a non-empty one replaces them all.
type SubmissionPatch struct {
	Name      string   `json:"name"      validate:"max=200"`
	Company   string   `json:"company"   validate:"max=200"`
	Country   string   `json:"country"   validate:"max=200"`
	Questions []string `json:"questions" validate:"omitempty,dive,required,max=2000"`
}

// Normalize trims surrounding whitespace from every field in place.
func (p *SubmissionPatch) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Company = strings.TrimSpace(p.Company)
	p.Country = strings.TrimSpace(p.Country)
	p.Questions = trimAll(p.Questions)
}

// Page is one slice of the globally ordered submission listing.
type Page struct {
	Submissions []Submission `json:"submissions"`
	TotalPages  int          `json:"totalPages"`
	CurrentPage int          `json:"currentPage"`
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, q := range in {
		out[i] = strings.TrimSpace(q)
	}
	return out
}
