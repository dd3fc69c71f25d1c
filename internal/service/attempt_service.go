package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/cbt-core/internal/dto"
	"github.com/lshigami/cbt-core/internal/event"
	"github.com/lshigami/cbt-core/internal/model"
	"github.com/lshigami/cbt-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// AttemptService owns the attempt lifecycle: it is the only writer of
// Attempt and Answer rows. Exams, questions and users are read-only
// collaborators here.
type AttemptService interface {
	Start(req dto.StartAttemptRequest) (*dto.AttemptDTO, error)
	GetDetail(attemptID uint, userID *uint) (*dto.AttemptDetailDTO, error)
	SaveAnswers(attemptID uint, userID *uint, answers []dto.AnswerSaveDTO) error
	Submit(ctx context.Context, attemptID uint, userID *uint) (*dto.SubmitResultDTO, error)
	Review(attemptID uint, userID *uint) ([]dto.ReviewItemDTO, error)
	GetHistory(userID uint, limit int) ([]dto.AttemptHistoryDTO, error)
}

type attemptService struct {
	examRepo     repository.ExamRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository
	grading      GradingService
	propagator   event.RankingPropagator
}

func NewAttemptService(
	examRepo repository.ExamRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	grading GradingService,
	propagator event.RankingPropagator,
) AttemptService {
	return &attemptService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		grading:      grading,
		propagator:   propagator,
	}
}

// Start creates an IN_PROGRESS attempt for the exam. UserID nil creates a
// guest attempt.
func (s *attemptService) Start(req dto.StartAttemptRequest) (*dto.AttemptDTO, error) {
	if _, err := s.examRepo.FindByID(req.ExamID); err != nil {
		log.Warn().Err(err).Uint("examID", req.ExamID).Msg("Start: exam lookup failed")
		return nil, fmt.Errorf("exam %d: %w", req.ExamID, err)
	}
	if req.UserID != nil {
		if _, err := s.userRepo.FindByID(*req.UserID); err != nil {
			log.Warn().Err(err).Uint("userID", *req.UserID).Msg("Start: user lookup failed")
			return nil, fmt.Errorf("user %d: %w", *req.UserID, err)
		}
	}

	attempt := model.Attempt{
		ExamID:    req.ExamID,
		UserID:    req.UserID,
		Status:    model.AttemptStatusInProgress,
		StartedAt: time.Now(),
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		log.Error().Err(err).Uint("examID", req.ExamID).Msg("Start: failed to create attempt")
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	var resp dto.AttemptDTO
	if err := copier.Copy(&resp, &attempt); err != nil {
		return nil, fmt.Errorf("prepare attempt response: %w", err)
	}
	log.Info().Uint("attemptID", attempt.ID).Uint("examID", req.ExamID).Bool("guest", attempt.IsGuest()).Msg("Attempt started")
	return &resp, nil
}

// GetDetail returns exam metadata and the questions in this attempt's
// deterministic order, with answer keys stripped.
func (s *attemptService) GetDetail(attemptID uint, userID *uint) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, err)
	}
	if err := validateOwner(attempt, userID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.FindByExamID(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("questions for exam %d: %w", attempt.ExamID, err)
	}
	ordered := OrderQuestions(questions, attempt.ID)

	detail := dto.AttemptDetailDTO{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		ExamTitle:   attempt.Exam.Title,
		DurationSec: attempt.Exam.DurationSec,
		StartedAt:   attempt.StartedAt,
		Status:      attempt.Status,
		Questions:   make([]dto.QuestionDTO, 0, len(ordered)),
	}
	for _, q := range ordered {
		// Deliberately a field-by-field copy: AnswerKey, AnswerKeywords and
		// Explanation must not reach the candidate during the exam.
		detail.Questions = append(detail.Questions, dto.QuestionDTO{
			ID:      q.ID,
			Type:    q.Type,
			Text:    q.Text,
			Choices: q.Choices,
			Score:   q.Score,
		})
	}
	return &detail, nil
}

// SaveAnswers upserts the given (question, response) pairs. Safe to call
// repeatedly and concurrently: the persistence layer enforces one row per
// (attempt, question). Answers referencing questions outside the attempt's
// exam are skipped, tolerating stale client state.
func (s *attemptService) SaveAnswers(attemptID uint, userID *uint, answers []dto.AnswerSaveDTO) error {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return fmt.Errorf("attempt %d: %w", attemptID, err)
	}
	if err := validateOwner(attempt, userID); err != nil {
		return err
	}
	if attempt.Status == model.AttemptStatusGraded {
		return model.ErrAlreadySubmitted
	}

	questions, err := s.questionRepo.FindByExamID(attempt.ExamID)
	if err != nil {
		return fmt.Errorf("questions for exam %d: %w", attempt.ExamID, err)
	}
	valid := make(map[uint]struct{}, len(questions))
	for _, q := range questions {
		valid[q.ID] = struct{}{}
	}

	for _, a := range answers {
		if _, ok := valid[a.QuestionID]; !ok {
			log.Warn().Uint("attemptID", attemptID).Uint("questionID", a.QuestionID).Msg("SaveAnswers: question not part of this exam, skipping")
			continue
		}
		answer := model.Answer{
			AttemptID:      attemptID,
			QuestionID:     a.QuestionID,
			SelectedChoice: a.SelectedChoice,
			ResponseText:   a.ResponseText,
		}
		if err := s.answerRepo.Upsert(&answer); err != nil {
			log.Error().Err(err).Uint("attemptID", attemptID).Uint("questionID", a.QuestionID).Msg("SaveAnswers: upsert failed")
			return fmt.Errorf("save answer for question %d: %w", a.QuestionID, err)
		}
	}
	return nil
}

// Submit grades the attempt and persists the result atomically, then hands
// the outcome to the ranking propagator. The repository's compare-and-set
// serializes concurrent submits for the same attempt: exactly one caller
// grades, every other caller gets ErrAlreadySubmitted.
func (s *attemptService) Submit(ctx context.Context, attemptID uint, userID *uint) (*dto.SubmitResultDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, err)
	}
	if err := validateOwner(attempt, userID); err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, model.ErrAlreadySubmitted
	}

	questions, err := s.questionRepo.FindByExamID(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("questions for exam %d: %w", attempt.ExamID, err)
	}
	answers, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("answers for attempt %d: %w", attemptID, err)
	}

	result := s.grading.GradeAttempt(questions, answers)
	submittedAt := time.Now()

	won, err := s.attemptRepo.FinalizeGrading(attemptID, result.TotalScore, submittedAt, result.GradedAnswers)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("Submit: failed to persist grading result")
		return nil, fmt.Errorf("finalize grading for attempt %d: %w", attemptID, err)
	}
	if !won {
		log.Info().Uint("attemptID", attemptID).Msg("Submit: lost grading race, attempt already graded")
		return nil, model.ErrAlreadySubmitted
	}

	log.Info().Uint("attemptID", attemptID).Int("totalScore", result.TotalScore).
		Int("correct", result.CorrectCount).Msg("Attempt graded")

	// Guest attempts never reach the leaderboards. Propagation failures are
	// logged, not surfaced: the grading transaction has committed and the
	// candidate's result must not depend on ranking availability.
	if !attempt.IsGuest() {
		evt := event.GradingCompleted{
			AttemptID:  attemptID,
			UserID:     *attempt.UserID,
			ExamID:     attempt.ExamID,
			FinalScore: float64(result.TotalScore),
		}
		if err := s.propagator.Propagate(ctx, evt); err != nil {
			log.Error().Err(err).Uint("attemptID", attemptID).Msg("Submit: ranking propagation failed, rankings will lag")
		}
	}

	graded := len(result.GradedAnswers)
	return &dto.SubmitResultDTO{
		AttemptID:     attemptID,
		ExamID:        attempt.ExamID,
		TotalScore:    result.TotalScore,
		CorrectCount:  result.CorrectCount,
		WrongCount:    graded - result.CorrectCount,
		QuestionCount: graded,
	}, nil
}

// Review pairs every question, in the attempt's deterministic order, with
// the candidate's answer and the canonical correct answer for display after
// grading.
func (s *attemptService) Review(attemptID uint, userID *uint) ([]dto.ReviewItemDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, err)
	}
	if err := validateOwner(attempt, userID); err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.FindByExamID(attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("questions for exam %d: %w", attempt.ExamID, err)
	}
	answers, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		return nil, fmt.Errorf("answers for attempt %d: %w", attemptID, err)
	}
	answerByQuestion := make(map[uint]*model.Answer, len(answers))
	for i := range answers {
		answerByQuestion[answers[i].QuestionID] = &answers[i]
	}

	ordered := OrderQuestions(questions, attempt.ID)
	items := make([]dto.ReviewItemDTO, 0, len(ordered))
	for _, q := range ordered {
		item := dto.ReviewItemDTO{
			QuestionID:  q.ID,
			Text:        q.Text,
			Type:        q.Type,
			Choices:     q.Choices,
			Score:       q.Score,
			Explanation: q.Explanation,
		}
		if q.Type == model.QuestionTypeMCQ {
			item.CorrectAnswer = q.AnswerKey
		} else {
			item.CorrectAnswer = q.AnswerKeywords
		}
		if ans, ok := answerByQuestion[q.ID]; ok {
			item.SelectedChoice = ans.SelectedChoice
			item.ResponseText = ans.ResponseText
			item.IsCorrect = ans.IsCorrect
			item.ScoreAwarded = ans.ScoreAwarded
		}
		items = append(items, item)
	}
	return items, nil
}

// GetHistory lists a user's attempts, most recent first.
func (s *attemptService) GetHistory(userID uint, limit int) ([]dto.AttemptHistoryDTO, error) {
	attempts, err := s.attemptRepo.FindByUserID(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("attempts for user %d: %w", userID, err)
	}
	history := make([]dto.AttemptHistoryDTO, 0, len(attempts))
	for _, a := range attempts {
		history = append(history, dto.AttemptHistoryDTO{
			AttemptID:   a.ID,
			ExamID:      a.ExamID,
			ExamTitle:   a.Exam.Title,
			Status:      a.Status,
			StartedAt:   a.StartedAt,
			SubmittedAt: a.SubmittedAt,
			TotalScore:  a.TotalScore,
		})
	}
	return history, nil
}

// validateOwner enforces the access rule: guest attempts are open to anyone
// holding the id, owned attempts only to their owner.
func validateOwner(attempt *model.Attempt, userID *uint) error {
	if attempt.IsGuest() {
		return nil
	}
	if userID == nil || *userID != *attempt.UserID {
		return model.ErrUnauthorized
	}
	return nil
}
