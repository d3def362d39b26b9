package history

// TestType distinguishes untimed practice from timed test sessions.
type TestType string

const (
	TestTypePractice TestType = "practice"
	TestTypeTest     TestType = "test"
)

// TestResult is one completed session. Immutable once saved; removed only
// by per-exam or global clears, never individually.
//
// JSON field names match the legacy persisted format, including "date" for
// the save timestamp.
type TestResult struct {
	ID             string   `json:"id"`
	Timestamp      string   `json:"date"`
	Score          int      `json:"score"`
	TotalQuestions int      `json:"totalQuestions"`
	CorrectAnswers int      `json:"correctAnswers"`
	TestType       string   `json:"testType"`
	Tags           []string `json:"tags"`
	// ExamType is empty on records saved before exam partitioning was
	// introduced; those belong to the default exam.
	ExamType string `json:"examType,omitempty"`
}
