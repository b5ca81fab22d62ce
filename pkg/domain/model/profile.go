package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-ai/mnemo/pkg/domain/types"
)

// UserProfile holds the static attributes of a companion user. It is
// read-mostly: updated by the profile API, consumed read-only by the
// context assembler.
type UserProfile struct {
	UserID     UserID
	Name       string
	Age        int
	Conditions []string `masq:"secret"`
	Interests  []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks structural invariants of the profile
func (p *UserProfile) Validate() error {
	if p.UserID == "" {
		return goerr.Wrap(types.ErrInvalidInput, "profile user ID is required")
	}
	if p.Name == "" {
		return goerr.Wrap(types.ErrInvalidInput, "profile name is required")
	}
	if p.Age < 0 {
		return goerr.Wrap(types.ErrInvalidInput, "profile age must not be negative",
			goerr.V("age", p.Age))
	}
	return nil
}

// Summary renders the static profile fields as a single context segment
func (p *UserProfile) Summary() string {
	conditions := "none recorded"
	if len(p.Conditions) > 0 {
		conditions = strings.Join(p.Conditions, ", ")
	}
	interests := "none recorded"
	if len(p.Interests) > 0 {
		interests = strings.Join(p.Interests, ", ")
	}
	return fmt.Sprintf("Profile: %s, age %d. Conditions: %s. Interests: %s.",
		p.Name, p.Age, conditions, interests)
}
