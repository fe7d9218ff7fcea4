// Package defects defines the closed defect vocabularies for inspection findings,
// the severity weight assigned to each category, and validation of classifier labels.
package defects

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Kind distinguishes text note findings from image findings. Each kind has its own vocabulary.
type Kind string

// Finding kinds.
const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

var kinds = []Kind{KindText, KindImage}

// UnmarshalJSON validates that the decoded string is a known kind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseKind(raw)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind validates a string as a known finding kind.
func ParseKind(s string) (Kind, error) {
	v := Kind(s)
	if !slices.Contains(kinds, v) {
		return "", ErrInvalidKind
	}
	return v, nil
}

// Method returns the classification method recorded for tags produced for kind.
func (k Kind) Method() string {
	return string(k) + "_ai"
}

// Category is a defect label drawn from one of the closed vocabularies.
type Category string

// Defect categories across both vocabularies.
const (
	None             Category = "none"
	DampWall         Category = "damp wall"
	ExposedWiring    Category = "exposed wiring"
	Crack            Category = "crack"
	Mold             Category = "mold"
	WaterLeak        Category = "water leak"
	ElectricalWiring Category = "electrical wiring"
)

var (
	textVocabulary  = []Category{DampWall, ExposedWiring, Crack, Mold, WaterLeak, None}
	imageVocabulary = []Category{Crack, WaterLeak, Mold, ElectricalWiring, None}
)

// Vocabulary returns the closed category set for kind. Unknown kinds have no vocabulary.
func Vocabulary(kind Kind) []Category {
	switch kind {
	case KindText:
		return slices.Clone(textVocabulary)
	case KindImage:
		return slices.Clone(imageVocabulary)
	default:
		return nil
	}
}

// Categories returns every category of every vocabulary without duplicates.
func Categories() []Category {
	all := slices.Clone(textVocabulary)
	for _, c := range imageVocabulary {
		if !slices.Contains(all, c) {
			all = append(all, c)
		}
	}
	return all
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

// ParseCategory validates a string as a member of any vocabulary.
func ParseCategory(s string) (Category, error) {
	v := Category(s)
	if !slices.Contains(Categories(), v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return v, nil
}

// Validate maps a raw classifier label to a member of the vocabulary for kind.
// Labels are matched after trimming and lower-casing. A label outside the vocabulary
// yields None together with an error wrapping ErrCategoryMismatch; callers treat the
// error as a warning and keep the None tag.
func Validate(raw string, kind Kind) (Category, error) {
	vocab := Vocabulary(kind)
	if vocab == nil {
		return None, fmt.Errorf("%w: unknown kind %q", ErrCategoryMismatch, kind)
	}

	label := Category(strings.ToLower(strings.TrimSpace(raw)))
	if slices.Contains(vocab, label) {
		return label, nil
	}

	return None, fmt.Errorf("%w: %q not in %s vocabulary", ErrCategoryMismatch, raw, kind)
}
