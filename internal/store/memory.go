package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/model"
)

// MemoryStore is the transient backend: plain maps behind one RWMutex.
// Everything is gone when the process exits, which is exactly the contract
// anonymous sessions get.
type MemoryStore struct {
	mu        sync.RWMutex
	revisions map[string]*model.Revision
	runs      map[string]*model.Run
	questions map[string][]model.Question      // keyed by run id
	answers   map[string]map[string]model.Answer // run id → question id → answer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revisions: make(map[string]*model.Revision),
		runs:      make(map[string]*model.Run),
		questions: make(map[string][]model.Question),
		answers:   make(map[string]map[string]model.Answer),
	}
}

func (s *MemoryStore) CreateRevision(identity model.Identity, rev *model.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev.UserID, rev.SessionID = identity.OwnerColumns()
	cp := *rev
	s.revisions[rev.ID] = &cp
	return nil
}

func (s *MemoryStore) ListRevisions(identity model.Identity) ([]model.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Revision
	for _, rev := range s.revisions {
		if identity.Owns(rev.UserID, rev.SessionID) {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetRevision(identity model.Identity, revisionID string) (*model.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rev, ok := s.revisions[revisionID]
	if !ok || !identity.Owns(rev.UserID, rev.SessionID) {
		return nil, fmt.Errorf("%w: revision %s", apperr.ErrNotFound, revisionID)
	}
	cp := *rev
	return &cp, nil
}

func (s *MemoryStore) DeleteRevision(identity model.Identity, revisionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rev, ok := s.revisions[revisionID]
	if !ok || !identity.Owns(rev.UserID, rev.SessionID) {
		return fmt.Errorf("%w: revision %s", apperr.ErrNotFound, revisionID)
	}
	delete(s.revisions, revisionID)
	for runID, run := range s.runs {
		if run.RevisionID == revisionID {
			delete(s.runs, runID)
			delete(s.questions, runID)
			delete(s.answers, runID)
		}
	}
	return nil
}

func (s *MemoryStore) ListSubjects(identity model.Identity) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, rev := range s.revisions {
		if identity.Owns(rev.UserID, rev.SessionID) && !seen[rev.Subject] {
			seen[rev.Subject] = true
			out = append(out, rev.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) CreateRun(identity model.Identity, run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.UserID, run.SessionID = identity.OwnerColumns()
	cp := *run
	cp.Questions = nil
	cp.Answers = nil
	s.runs[run.ID] = &cp
	return nil
}

func (s *MemoryStore) GetRun(identity model.Identity, runID string) (*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[runID]
	if !ok || !identity.Owns(run.UserID, run.SessionID) {
		return nil, fmt.Errorf("%w: run %s", apperr.ErrNotFound, runID)
	}
	return s.loadRunLocked(run), nil
}

// loadRunLocked copies the run together with its questions and answers.
func (s *MemoryStore) loadRunLocked(run *model.Run) *model.Run {
	cp := *run
	cp.Questions = append([]model.Question(nil), s.questions[run.ID]...)
	cp.Answers = nil
	for _, a := range s.answers[run.ID] {
		cp.Answers = append(cp.Answers, a)
	}
	sort.Slice(cp.Answers, func(i, j int) bool { return cp.Answers[i].QuestionID < cp.Answers[j].QuestionID })
	return &cp
}

func (s *MemoryStore) ListRuns(identity model.Identity, revisionID string) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Run
	for _, run := range s.runs {
		if !identity.Owns(run.UserID, run.SessionID) {
			continue
		}
		if revisionID != "" && run.RevisionID != revisionID {
			continue
		}
		out = append(out, *s.loadRunLocked(run))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateRun(identity model.Identity, run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.runs[run.ID]
	if !ok || !identity.Owns(stored.UserID, stored.SessionID) {
		return fmt.Errorf("%w: run %s", apperr.ErrNotFound, run.ID)
	}
	stored.State = run.State
	stored.Cursor = run.Cursor
	stored.Synthetic = run.Synthetic
	stored.CompletedAt = run.CompletedAt
	return nil
}

func (s *MemoryStore) ListCompletedRuns(identity model.Identity) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Run
	for _, run := range s.runs {
		if run.State == model.RunCompleted && identity.Owns(run.UserID, run.SessionID) {
			out = append(out, *s.loadRunLocked(run))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].CompletedAt, out[j].CompletedAt
		if ci == nil || cj == nil {
			return cj == nil
		}
		return ci.After(*cj)
	})
	return out, nil
}

func (s *MemoryStore) SaveQuestions(runID string, questions []model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[runID] = append([]model.Question(nil), questions...)
	return nil
}

func (s *MemoryStore) UpsertAnswer(runID string, answer *model.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answers[runID] == nil {
		s.answers[runID] = make(map[string]model.Answer)
	}
	s.answers[runID][answer.QuestionID] = *answer
	return nil
}
