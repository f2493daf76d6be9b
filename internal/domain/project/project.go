// Package project defines the Project (tenant) entity and its event schema.
package project

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Strob0t/lightlogger/internal/domain"
)

// MaxNameLength is the longest accepted project name, in characters.
const MaxNameLength = 255

// TokenBytes is the number of random bytes behind a project token.
const TokenBytes = 32

// Project is an isolated ingestion namespace addressed by its token.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	Schema    *Schema   `json:"schema"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new project.
type CreateRequest struct {
	Name *string `json:"name"`
}

// Validate normalizes the name in place and checks it.
func (r *CreateRequest) Validate() error {
	if r.Name == nil {
		return domain.NewValidationError("Project name is required")
	}
	name := strings.TrimSpace(*r.Name)
	if name == "" {
		return domain.NewValidationError("Project name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domain.NewValidationError("Project name is too long (max 255 characters)")
	}
	for _, c := range name {
		if unicode.IsControl(c) {
			return domain.NewValidationError("Project name contains control characters")
		}
	}
	*r.Name = name
	return nil
}
