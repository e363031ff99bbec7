package prompts

import (
	"encoding/json"
	"slices"
)

// Category is the generative-model family a prompt targets.
type Category string

// Valid prompt categories.
const (
	CategoryText  Category = "Text"
	CategoryImage Category = "Image-generation"
	CategoryVideo Category = "Video"
	CategoryAudio Category = "Audio"
	CategoryOther Category = "Other"
)

var categories = []Category{
	CategoryText,
	CategoryImage,
	CategoryVideo,
	CategoryAudio,
	CategoryOther,
}

// aliases are accepted on read and normalized; only the canonical values are
// ever written.
var aliases = map[string]Category{
	"Image":              CategoryImage,
	"Generování Obrázků": CategoryImage,
	"Ostatní":            CategoryOther,
}

// Categories returns the list of valid categories.
func Categories() []Category {
	return categories
}

// UnmarshalJSON validates that the decoded string is a known category.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCategory validates a string as a known category, accepting legacy labels.
// Returns ErrInvalidCategory if the value is not recognized.
func ParseCategory(s string) (Category, error) {
	v := Category(s)
	if slices.Contains(categories, v) {
		return v, nil
	}
	if alias, ok := aliases[s]; ok {
		return alias, nil
	}
	return "", ErrInvalidCategory
}
