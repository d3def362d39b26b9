package examinfo

import (
	"go.uber.org/zap"

	"github.com/afuente/examly/internal/kvstore"
)

// SelectionKey is the global storage key holding the active exam.
const SelectionKey = "selected-exam"

// Selection tracks the persistently selected exam. Every exam-partitioned
// storage key is derived from this value.
type Selection struct {
	store kvstore.Store
	log   *zap.Logger
}

// NewSelection creates a Selection over the given store.
func NewSelection(store kvstore.Store, log *zap.Logger) *Selection {
	return &Selection{store: store, log: log}
}

// Selected returns the explicitly chosen exam, if any. Unknown persisted
// values count as no selection.
func (s *Selection) Selected() (Type, bool) {
	raw, ok, err := s.store.Get(SelectionKey)
	if err != nil {
		s.log.Warn("read exam selection", zap.Error(err))
		return "", false
	}
	if !ok {
		return "", false
	}
	t, err := Parse(raw)
	if err != nil {
		s.log.Warn("invalid persisted exam selection", zap.String("value", raw))
		return "", false
	}
	return t, true
}

// Current returns the active exam, falling back to DefaultType when none is
// selected.
func (s *Selection) Current() Type {
	if t, ok := s.Selected(); ok {
		return t
	}
	return DefaultType
}

// Select persists t as the active exam.
func (s *Selection) Select(t Type) error {
	return s.store.Set(SelectionKey, string(t))
}
