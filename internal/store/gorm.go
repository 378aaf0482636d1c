package store

import (
	"errors"
	"fmt"

	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the durable backend on postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ownerScope restricts a query to rows owned by the identity. Authenticated
// callers match on user_id, anonymous callers on session_id.
func ownerScope(identity model.Identity) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		userID, sessionID := identity.OwnerColumns()
		if userID != nil {
			return tx.Where("user_id = ?", *userID)
		}
		return tx.Where("user_id IS NULL AND session_id = ?", *sessionID)
	}
}

func (s *GormStore) CreateRevision(identity model.Identity, rev *model.Revision) error {
	rev.UserID, rev.SessionID = identity.OwnerColumns()
	if err := s.db.Create(rev).Error; err != nil {
		return fmt.Errorf("%w: create revision: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *GormStore) ListRevisions(identity model.Identity) ([]model.Revision, error) {
	var revisions []model.Revision
	err := s.db.Scopes(ownerScope(identity)).Order("created_at ASC").Find(&revisions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list revisions: %v", apperr.ErrPersistence, err)
	}
	return revisions, nil
}

func (s *GormStore) GetRevision(identity model.Identity, revisionID string) (*model.Revision, error) {
	var rev model.Revision
	err := s.db.Scopes(ownerScope(identity)).First(&rev, "id = ?", revisionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: revision %s", apperr.ErrNotFound, revisionID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get revision: %v", apperr.ErrPersistence, err)
	}
	return &rev, nil
}

func (s *GormStore) DeleteRevision(identity model.Identity, revisionID string) error {
	if _, err := s.GetRevision(identity, revisionID); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var runIDs []string
		if err := tx.Model(&model.Run{}).Where("revision_id = ?", revisionID).Pluck("id", &runIDs).Error; err != nil {
			return err
		}
		if len(runIDs) > 0 {
			if err := tx.Where("run_id IN ?", runIDs).Delete(&model.Answer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("run_id IN ?", runIDs).Delete(&model.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", runIDs).Delete(&model.Run{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Revision{}, "id = ?", revisionID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: delete revision: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *GormStore) ListSubjects(identity model.Identity) ([]string, error) {
	var subjects []string
	err := s.db.Model(&model.Revision{}).Scopes(ownerScope(identity)).
		Distinct("subject").Order("subject ASC").Pluck("subject", &subjects).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list subjects: %v", apperr.ErrPersistence, err)
	}
	return subjects, nil
}

func (s *GormStore) CreateRun(identity model.Identity, run *model.Run) error {
	run.UserID, run.SessionID = identity.OwnerColumns()
	if err := s.db.Omit("Questions", "Answers").Create(run).Error; err != nil {
		return fmt.Errorf("%w: create run: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *GormStore) GetRun(identity model.Identity, runID string) (*model.Run, error) {
	var run model.Run
	err := s.db.Scopes(ownerScope(identity)).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("ordinal ASC") }).
		Preload("Answers").
		First(&run, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: run %s", apperr.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get run: %v", apperr.ErrPersistence, err)
	}
	return &run, nil
}

func (s *GormStore) ListRuns(identity model.Identity, revisionID string) ([]model.Run, error) {
	tx := s.db.Scopes(ownerScope(identity))
	if revisionID != "" {
		tx = tx.Where("revision_id = ?", revisionID)
	}
	var runs []model.Run
	err := tx.Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("ordinal ASC") }).
		Preload("Answers").
		Order("created_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", apperr.ErrPersistence, err)
	}
	return runs, nil
}

func (s *GormStore) UpdateRun(identity model.Identity, run *model.Run) error {
	res := s.db.Model(&model.Run{}).Scopes(ownerScope(identity)).Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"state":        run.State,
			"cursor":       run.Cursor,
			"synthetic":    run.Synthetic,
			"completed_at": run.CompletedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("%w: update run: %v", apperr.ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: run %s", apperr.ErrNotFound, run.ID)
	}
	return nil
}

func (s *GormStore) ListCompletedRuns(identity model.Identity) ([]model.Run, error) {
	var runs []model.Run
	err := s.db.Scopes(ownerScope(identity)).Where("state = ?", model.RunCompleted).
		Preload("Questions", func(tx *gorm.DB) *gorm.DB { return tx.Order("ordinal ASC") }).
		Preload("Answers").
		Order("completed_at DESC").
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list completed runs: %v", apperr.ErrPersistence, err)
	}
	return runs, nil
}

func (s *GormStore) SaveQuestions(runID string, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	for i := range questions {
		questions[i].RunID = runID
	}
	if err := s.db.Create(&questions).Error; err != nil {
		return fmt.Errorf("%w: save questions: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *GormStore) UpsertAnswer(runID string, answer *model.Answer) error {
	answer.RunID = runID
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "run_id"}, {Name: "question_id"}},
		UpdateAll: true,
	}).Create(answer).Error
	if err != nil {
		return fmt.Errorf("%w: upsert answer: %v", apperr.ErrPersistence, err)
	}
	return nil
}
