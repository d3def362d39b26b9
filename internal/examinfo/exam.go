package examinfo

import "fmt"

// Type identifies a supported certification exam.
type Type string

const (
	PMP Type = "pmp"
	FCE Type = "fce"
)

// DefaultType is assumed for legacy records that predate exam tagging and
// when the user has not selected an exam yet.
const DefaultType = PMP

// All returns the supported exam types in display order.
func All() []Type {
	return []Type{PMP, FCE}
}

// Parse converts a raw string into a known exam type.
func Parse(s string) (Type, error) {
	for _, t := range All() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown exam type: %q", s)
}

// DisplayName returns a human-readable label for the exam.
func (t Type) DisplayName() string {
	switch t {
	case PMP:
		return "PMP Certification"
	case FCE:
		return "FCE (B2 First)"
	default:
		return string(t)
	}
}

// TableName returns the question source table for this exam.
func (t Type) TableName() string {
	return string(t) + "questions"
}

// FlashcardTable returns the flashcard source table for this exam. The
// naming convention differs from the question tables (underscore).
func (t Type) FlashcardTable() string {
	return string(t) + "_flashcards"
}

// Key namespaces a storage key suffix under this exam.
func (t Type) Key(suffix string) string {
	return string(t) + "-" + suffix
}

// GlobalKey namespaces a storage key suffix under the exam-agnostic
// namespace. Used by the app-usage streak, which deliberately ignores the
// exam partition.
func GlobalKey(suffix string) string {
	return "global-" + suffix
}
