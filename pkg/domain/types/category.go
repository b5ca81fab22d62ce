package types

import "github.com/m-mizutani/goerr/v2"

// Category classifies the kind of information a memory fragment carries
type Category string

const (
	CategoryHealth      Category = "health"
	CategoryEmotion     Category = "emotion"
	CategoryEvent       Category = "event"
	CategoryPreference  Category = "preference"
	CategoryInteraction Category = "interaction"
)

// AllCategories returns all valid fragment categories
func AllCategories() []Category {
	return []Category{
		CategoryHealth,
		CategoryEmotion,
		CategoryEvent,
		CategoryPreference,
		CategoryInteraction,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryHealth,
		CategoryEmotion,
		CategoryEvent,
		CategoryPreference,
		CategoryInteraction:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category
func ParseCategory(s string) (Category, error) {
	category := Category(s)
	if !category.IsValid() {
		return "", goerr.Wrap(ErrInvalidInput, "invalid category", goerr.V("category", s))
	}
	return category, nil
}
