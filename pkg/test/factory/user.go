package factory

import (
	"fmt"

	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"
)

// NewUser builds a T (domain.User, request.UserRequest, ...) whose Name and
// Email are valid and unique unless customData overrides them.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	suffix := uuid.NewString()[:8]

	data := map[string]any{
		"Name":  "User " + suffix,
		"Email": fmt.Sprintf("user-%s@example.com", suffix),
	}

	for _, custom := range customData {
		for key, value := range custom {
			data[key] = value
		}
	}

	return instance.Build(data)
}
