package service

import (
	"math/rand"

	"github.com/lshigami/cbt-core/internal/model"
)

// OrderQuestions returns the per-attempt question permutation. The shuffle is
// seeded with the attempt id, so the detail view during the exam and the
// review view after grading reconstruct the exact same order. Wall-clock or
// global RNG state must never leak in here.
func OrderQuestions(questions []model.Question, attemptID uint) []model.Question {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)

	rnd := rand.New(rand.NewSource(int64(attemptID)))
	rnd.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	return ordered
}
