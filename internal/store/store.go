package store

import (
	"github.com/revisehub/revisehub/config"
	"github.com/revisehub/revisehub/database"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Store is the persistence layer for revisions, runs, questions and answers.
// Every read and write is scoped by the owning identity: an entity the caller
// does not own behaves exactly like one that does not exist.
//
// Exactly one backend is chosen at process start, durable (postgres) or
// transient (in-memory); callers never inspect which one is active.
type Store interface {
	CreateRevision(identity model.Identity, rev *model.Revision) error
	ListRevisions(identity model.Identity) ([]model.Revision, error)
	GetRevision(identity model.Identity, revisionID string) (*model.Revision, error)
	// DeleteRevision cascades to the revision's runs, questions and answers.
	DeleteRevision(identity model.Identity, revisionID string) error
	ListSubjects(identity model.Identity) ([]string, error)

	CreateRun(identity model.Identity, run *model.Run) error
	// GetRun returns the run with its questions (ordered) and answers.
	GetRun(identity model.Identity, runID string) (*model.Run, error)
	// ListRuns returns the identity's runs, newest first; a non-empty
	// revisionID restricts the list to that revision.
	ListRuns(identity model.Identity, revisionID string) ([]model.Run, error)
	UpdateRun(identity model.Identity, run *model.Run) error
	ListCompletedRuns(identity model.Identity) ([]model.Run, error)

	SaveQuestions(runID string, questions []model.Question) error
	// UpsertAnswer overwrites any previous answer for the same question.
	UpsertAnswer(runID string, answer *model.Answer) error
}

// New picks the backend once at boot. A durable backend that is unreachable
// downgrades the process to the transient store for its lifetime; this is
// logged exactly once and is not an error.
func New(cfg *config.Config) (Store, *gorm.DB) {
	if cfg.Storage.Backend == "memory" {
		log.Info().Msg("Using transient in-memory storage backend")
		return NewMemoryStore(), nil
	}

	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Durable backend unavailable at boot, downgrading to transient in-memory storage for this process")
		return NewMemoryStore(), nil
	}
	log.Info().Msg("Using durable postgres storage backend")
	return NewGormStore(db), db
}
