package request

import "strings"

// UserRequest is the body accepted by POST and PUT /api/users.
type UserRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,basic_email,max=255"`
}

// Trim strips surrounding whitespace so that validation sees the same values
// that will be stored.
func (r *UserRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
}
