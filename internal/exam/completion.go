package exam

import (
	"github.com/afuente/examly/internal/examinfo"
	"github.com/afuente/examly/internal/kvstore"
)

// completedSuffix namespaces the per-exam completion flag, e.g.
// "pmp-exam-completed". Set when a session is submitted and cleared when a
// new one starts, so other surfaces can tell a finished exam from one in
// progress.
const completedSuffix = "exam-completed"

// MarkCompleted raises the completion flag for exam.
func MarkCompleted(store kvstore.Store, exam examinfo.Type) error {
	return store.Set(exam.Key(completedSuffix), "true")
}

// ClearCompleted lowers the completion flag for exam.
func ClearCompleted(store kvstore.Store, exam examinfo.Type) error {
	return store.Delete(exam.Key(completedSuffix))
}

// Completed reports whether exam has a submitted session that no new
// session has superseded.
func Completed(store kvstore.Store, exam examinfo.Type) bool {
	flag, ok, err := store.Get(exam.Key(completedSuffix))
	return err == nil && ok && flag == "true"
}
