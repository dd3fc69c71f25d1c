package event

// GradingCompleted is emitted after a non-guest attempt is graded and
// committed. It carries everything the ranking consumer needs, so the
// consumer never has to read the attempt back from the database. AttemptID
// doubles as the dedup key under at-least-once delivery.
type GradingCompleted struct {
	AttemptID  uint    `json:"attempt_id"`
	UserID     uint    `json:"user_id"`
	ExamID     uint    `json:"exam_id"`
	FinalScore float64 `json:"final_score"`
}
