package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/store"
)

// scriptedProvider replays a queue of replies, one per call.
type scriptedProvider struct {
	replies []string
}

func (p *scriptedProvider) Complete(context.Context, string, string) (string, error) {
	if len(p.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func verdict(tier model.Tier) string {
	return fmt.Sprintf(`{"score": %q, "is_correct": false, "correct_answer": "ref", "explanation": "because"}`, tier)
}

type fixture struct {
	coordinator RunCoordinator
	store       store.Store
	identity    model.Identity
	revision    *model.Revision
}

func newFixture(t *testing.T, llmReplies ...string) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	llm := &scriptedProvider{replies: llmReplies}
	resolver := testResolver()
	coordinator := NewRunCoordinator(st,
		NewQuestionGenerator(resolver, llm),
		NewAnswerGrader(resolver, llm),
		NewScoringService())

	identity := model.Identity{UserID: "user-1"}
	rev := &model.Revision{
		ID:                   "rev-1",
		Name:                 "Cell biology",
		Subject:              "Biology",
		MaterialText:         "mitochondria notes",
		DesiredQuestionCount: 3,
		QuestionStyle:        model.StyleFreeText,
		AccuracyThreshold:    60,
		CreatedAt:            time.Now().UTC(),
	}
	if err := st.CreateRevision(identity, rev); err != nil {
		t.Fatalf("CreateRevision: %v", err)
	}
	return &fixture{coordinator: coordinator, store: st, identity: identity, revision: rev}
}

func TestStartPopulatesRun(t *testing.T) {
	f := newFixture(t, "a?\nb?\nc?")

	run, err := f.coordinator.Start(context.Background(), f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if run.State != model.RunPopulated {
		t.Errorf("state = %q", run.State)
	}
	if len(run.Questions) != 3 {
		t.Fatalf("got %d questions", len(run.Questions))
	}

	count, err := f.coordinator.QuestionCount(f.identity, run.ID)
	if err != nil || count != 3 {
		t.Fatalf("QuestionCount = %d, %v", count, err)
	}
}

func TestStartUnknownRevision(t *testing.T) {
	f := newFixture(t)
	_, err := f.coordinator.Start(context.Background(), f.identity, "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNextQuestionCursorBounds(t *testing.T) {
	f := newFixture(t, "a?\nb?")
	run, err := f.coordinator.Start(context.Background(), f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	q1, err := f.coordinator.NextQuestion(f.identity, run.ID)
	if err != nil || q1 == nil || q1.ID != "q1" {
		t.Fatalf("first fetch = %+v, %v", q1, err)
	}
	q2, err := f.coordinator.NextQuestion(f.identity, run.ID)
	if err != nil || q2 == nil || q2.ID != "q2" {
		t.Fatalf("second fetch = %+v, %v", q2, err)
	}
	q3, err := f.coordinator.NextQuestion(f.identity, run.ID)
	if err != nil {
		t.Fatalf("exhausted fetch: %v", err)
	}
	if q3 != nil {
		t.Fatalf("fetch past the last question = %+v, want nil", q3)
	}
}

func TestSubmitAnswerRequiresServedQuestion(t *testing.T) {
	f := newFixture(t, "a?\nb?")
	run, err := f.coordinator.Start(context.Background(), f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = f.coordinator.SubmitAnswer(context.Background(), f.identity, run.ID, "q1", "answer")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unserved question: err = %v, want ErrValidation", err)
	}

	_, err = f.coordinator.SubmitAnswer(context.Background(), f.identity, run.ID, "nope", "answer")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown question: err = %v, want ErrNotFound", err)
	}
}

func TestSubmitAnswerOverwrites(t *testing.T) {
	f := newFixture(t, "a?",
		verdict(model.TierIncorrect),
		verdict(model.TierFullMarks),
	)
	run, err := f.coordinator.Start(context.Background(), f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.coordinator.NextQuestion(f.identity, run.ID); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}

	first, err := f.coordinator.SubmitAnswer(context.Background(), f.identity, run.ID, "q1", "wrong")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if first.Tier != model.TierIncorrect {
		t.Fatalf("first tier = %q", first.Tier)
	}

	second, err := f.coordinator.SubmitAnswer(context.Background(), f.identity, run.ID, "q1", "right")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.Tier != model.TierFullMarks {
		t.Fatalf("second tier = %q", second.Tier)
	}

	summary, err := f.coordinator.Summarize(f.identity, run.ID)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.AnsweredCount != 1 {
		t.Fatalf("answered count = %d, want 1 after overwrite", summary.AnsweredCount)
	}
	if summary.Accuracy != 100 {
		t.Fatalf("accuracy = %v, want the overwritten grade to count", summary.Accuracy)
	}
}

func TestListRuns(t *testing.T) {
	f := newFixture(t, "a?", "b?")
	ctx := context.Background()

	other := &model.Revision{
		ID: "rev-2", Name: "Optics", Subject: "Physics",
		MaterialText: "lens notes", DesiredQuestionCount: 1,
		QuestionStyle: model.StyleFreeText, CreatedAt: time.Now().UTC(),
	}
	if err := f.store.CreateRevision(f.identity, other); err != nil {
		t.Fatalf("CreateRevision: %v", err)
	}

	first, err := f.coordinator.Start(ctx, f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.coordinator.Start(ctx, f.identity, other.ID); err != nil {
		t.Fatalf("Start second: %v", err)
	}

	all, err := f.coordinator.ListRuns(f.identity, "")
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d runs, want 2", len(all))
	}

	scoped, err := f.coordinator.ListRuns(f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("scoped ListRuns: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != first.ID {
		t.Fatalf("scoped runs = %+v", scoped)
	}
	if len(scoped[0].Questions) != 1 {
		t.Fatalf("scoped run questions = %d, want 1", len(scoped[0].Questions))
	}

	if _, err := f.coordinator.ListRuns(f.identity, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown revision: err = %v, want ErrNotFound", err)
	}
	stranger, err := f.coordinator.ListRuns(model.Identity{UserID: "someone-else"}, "")
	if err != nil {
		t.Fatalf("stranger ListRuns: %v", err)
	}
	if len(stranger) != 0 {
		t.Fatalf("runs leaked across identities: %+v", stranger)
	}
}

func TestFinishIdempotent(t *testing.T) {
	f := newFixture(t, "a?")
	run, err := f.coordinator.Start(context.Background(), f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	first, err := f.coordinator.Finish(f.identity, run.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if first.State != model.RunCompleted || first.CompletedAt == nil {
		t.Fatalf("summary = %+v", first)
	}

	second, err := f.coordinator.Finish(f.identity, run.ID)
	if err != nil {
		t.Fatalf("second Finish: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completed at changed: %v vs %v", second.CompletedAt, first.CompletedAt)
	}

	_, err = f.coordinator.SubmitAnswer(context.Background(), f.identity, run.ID, "q1", "late")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("submit after finish: err = %v, want ErrValidation", err)
	}
	q, err := f.coordinator.NextQuestion(f.identity, run.ID)
	if !errors.Is(err, apperr.ErrValidation) || q != nil {
		t.Fatalf("fetch after finish: %+v, %v", q, err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	f := newFixture(t, "a?\nb?\nc?",
		verdict(model.TierFullMarks),
		verdict(model.TierPartialMarks),
		verdict(model.TierIncorrect),
	)
	ctx := context.Background()

	run, err := f.coordinator.Start(ctx, f.identity, f.revision.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 1; i <= 3; i++ {
		q, err := f.coordinator.NextQuestion(f.identity, run.ID)
		if err != nil || q == nil {
			t.Fatalf("fetch %d: %+v, %v", i, q, err)
		}
		if _, err := f.coordinator.SubmitAnswer(ctx, f.identity, run.ID, q.ID, "my answer"); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	summary, err := f.coordinator.Finish(f.identity, run.ID)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if summary.Accuracy != 50.0 {
		t.Errorf("accuracy = %v, want 50.0", summary.Accuracy)
	}
	if summary.ThresholdMet {
		t.Error("50%% must not meet a 60%% threshold")
	}
	if summary.QuestionCount != 3 || summary.AnsweredCount != 3 {
		t.Errorf("summary counts = %d/%d", summary.AnsweredCount, summary.QuestionCount)
	}

	completed, err := f.coordinator.ListCompleted(f.identity)
	if err != nil {
		t.Fatalf("ListCompleted: %v", err)
	}
	if len(completed) != 1 || completed[0].RunID != run.ID {
		t.Fatalf("completed = %+v", completed)
	}

	other := model.Identity{UserID: "someone-else"}
	theirs, err := f.coordinator.ListCompleted(other)
	if err != nil {
		t.Fatalf("ListCompleted other: %v", err)
	}
	if len(theirs) != 0 {
		t.Fatalf("completed runs leaked across identities: %+v", theirs)
	}
}
