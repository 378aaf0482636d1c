package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/store"
	"github.com/rs/zerolog/log"
)

// AnswerOverwritePolicy: a resubmitted answer for the same question replaces
// the stored one. The alternative (reject resubmission) is not offered.
const AnswerOverwriteEnabled = true

// Summary is the aggregate view of a run's results.
type Summary struct {
	RunID         string
	RevisionID    string
	State         model.RunState
	QuestionCount int
	AnsweredCount int
	Accuracy      float64
	ThresholdMet  bool
	Answers       []model.Answer
	CompletedAt   *time.Time
}

// RunCoordinator drives a run through its life cycle. All mutating
// operations on the same run are serialized.
type RunCoordinator interface {
	Start(ctx context.Context, identity model.Identity, revisionID string) (*model.Run, error)
	NextQuestion(identity model.Identity, runID string) (*model.Question, error)
	QuestionCount(identity model.Identity, runID string) (int, error)
	SubmitAnswer(ctx context.Context, identity model.Identity, runID, questionID, studentAnswer string) (*model.Answer, error)
	Finish(identity model.Identity, runID string) (*Summary, error)
	Summarize(identity model.Identity, runID string) (*Summary, error)
	// ListRuns returns the identity's runs, optionally scoped to one
	// revision. An empty revisionID lists runs across all revisions.
	ListRuns(identity model.Identity, revisionID string) ([]model.Run, error)
	ListCompleted(identity model.Identity) ([]Summary, error)
}

type runCoordinator struct {
	store     store.Store
	generator QuestionGenerator
	grader    AnswerGrader
	scoring   ScoringService
	locks     sync.Map // run id → *sync.Mutex
}

func NewRunCoordinator(st store.Store, generator QuestionGenerator, grader AnswerGrader, scoring ScoringService) RunCoordinator {
	return &runCoordinator{store: st, generator: generator, grader: grader, scoring: scoring}
}

func (c *runCoordinator) lock(runID string) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(runID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Start creates a run for the revision and eagerly generates its questions,
// so the first next-question fetch never waits on the provider.
func (c *runCoordinator) Start(ctx context.Context, identity model.Identity, revisionID string) (*model.Run, error) {
	rev, err := c.store.GetRevision(identity, revisionID)
	if err != nil {
		return nil, err
	}

	run := &model.Run{
		ID:         uuid.NewString(),
		RevisionID: rev.ID,
		State:      model.RunCreated,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.store.CreateRun(identity, run); err != nil {
		return nil, err
	}

	result := c.generator.Generate(ctx, GenerateRequest{
		Material: rev.MaterialText,
		Count:    rev.DesiredQuestionCount,
		Subject:  rev.Subject,
		Style:    rev.QuestionStyle,
	})
	for i := range result.Questions {
		result.Questions[i].RunID = run.ID
	}
	if err := c.store.SaveQuestions(run.ID, result.Questions); err != nil {
		return nil, err
	}

	run.State = model.RunPopulated
	run.Synthetic = result.Synthetic
	if err := c.store.UpdateRun(identity, run); err != nil {
		return nil, err
	}
	run.Questions = result.Questions

	log.Info().Str("runID", run.ID).Str("revisionID", rev.ID).
		Int("questions", len(result.Questions)).Bool("synthetic", result.Synthetic).
		Msg("Run started")
	return run, nil
}

// NextQuestion serves the question at the cursor and advances it. Every
// fetch advances; re-reading a served question is not supported. Past the
// last question the result is nil with no error.
func (c *runCoordinator) NextQuestion(identity model.Identity, runID string) (*model.Question, error) {
	mu := c.lock(runID)
	mu.Lock()
	defer mu.Unlock()

	run, err := c.store.GetRun(identity, runID)
	if err != nil {
		return nil, err
	}
	if run.State == model.RunCompleted {
		return nil, fmt.Errorf("%w: run %s is already completed", apperr.ErrValidation, runID)
	}
	if run.Cursor >= len(run.Questions) {
		return nil, nil
	}

	q := run.Questions[run.Cursor]
	run.Cursor++
	if run.State != model.RunInProgress {
		run.State = model.RunInProgress
	}
	if err := c.store.UpdateRun(identity, run); err != nil {
		return nil, err
	}
	return &q, nil
}

func (c *runCoordinator) QuestionCount(identity model.Identity, runID string) (int, error) {
	run, err := c.store.GetRun(identity, runID)
	if err != nil {
		return 0, err
	}
	return len(run.Questions), nil
}

// SubmitAnswer grades and stores an answer for a question that has already
// been served. Resubmission overwrites the stored answer.
func (c *runCoordinator) SubmitAnswer(ctx context.Context, identity model.Identity, runID, questionID, studentAnswer string) (*model.Answer, error) {
	mu := c.lock(runID)
	mu.Lock()
	defer mu.Unlock()

	run, err := c.store.GetRun(identity, runID)
	if err != nil {
		return nil, err
	}
	if run.State == model.RunCompleted {
		return nil, fmt.Errorf("%w: run %s is already completed", apperr.ErrValidation, runID)
	}

	question := run.QuestionByID(questionID)
	if question == nil {
		return nil, fmt.Errorf("%w: question %s in run %s", apperr.ErrNotFound, questionID, runID)
	}
	if question.Index >= run.Cursor {
		return nil, fmt.Errorf("%w: question %s has not been served yet", apperr.ErrValidation, questionID)
	}

	rev, err := c.store.GetRevision(identity, run.RevisionID)
	if err != nil {
		return nil, err
	}

	grading, err := c.grader.Grade(ctx, GradeRequest{
		Question:      question,
		StudentAnswer: studentAnswer,
		Material:      rev.MaterialText,
		Subject:       rev.Subject,
	})
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		RunID:         runID,
		QuestionID:    questionID,
		StudentAnswer: studentAnswer,
		Tier:          grading.Tier,
		CorrectAnswer: grading.CorrectAnswer,
		Explanation:   grading.Explanation,
		GradedAt:      time.Now().UTC(),
	}
	if err := c.store.UpsertAnswer(runID, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// Finish completes the run and returns its summary. Finishing a completed
// run is a no-op that returns the existing summary.
func (c *runCoordinator) Finish(identity model.Identity, runID string) (*Summary, error) {
	mu := c.lock(runID)
	mu.Lock()
	defer mu.Unlock()

	run, err := c.store.GetRun(identity, runID)
	if err != nil {
		return nil, err
	}
	if run.State != model.RunCompleted {
		now := time.Now().UTC()
		run.State = model.RunCompleted
		run.CompletedAt = &now
		if err := c.store.UpdateRun(identity, run); err != nil {
			return nil, err
		}
	}
	return c.summarize(identity, run)
}

func (c *runCoordinator) Summarize(identity model.Identity, runID string) (*Summary, error) {
	run, err := c.store.GetRun(identity, runID)
	if err != nil {
		return nil, err
	}
	return c.summarize(identity, run)
}

func (c *runCoordinator) summarize(identity model.Identity, run *model.Run) (*Summary, error) {
	rev, err := c.store.GetRevision(identity, run.RevisionID)
	if err != nil {
		return nil, err
	}
	accuracy := c.scoring.Accuracy(run.Answers)
	return &Summary{
		RunID:         run.ID,
		RevisionID:    run.RevisionID,
		State:         run.State,
		QuestionCount: len(run.Questions),
		AnsweredCount: len(run.Answers),
		Accuracy:      accuracy,
		ThresholdMet:  accuracy >= float64(rev.AccuracyThreshold),
		Answers:       run.Answers,
		CompletedAt:   run.CompletedAt,
	}, nil
}

func (c *runCoordinator) ListRuns(identity model.Identity, revisionID string) ([]model.Run, error) {
	if revisionID != "" {
		if _, err := c.store.GetRevision(identity, revisionID); err != nil {
			return nil, err
		}
	}
	return c.store.ListRuns(identity, revisionID)
}

func (c *runCoordinator) ListCompleted(identity model.Identity) ([]Summary, error) {
	runs, err := c.store.ListCompletedRuns(identity)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, 0, len(runs))
	for i := range runs {
		s, err := c.summarize(identity, &runs[i])
		if err != nil {
			log.Warn().Err(err).Str("runID", runs[i].ID).Msg("Skipping completed run without a readable revision")
			continue
		}
		summaries = append(summaries, *s)
	}
	return summaries, nil
}
