package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/revisehub/revisehub/internal/apperr"
	"github.com/revisehub/revisehub/internal/dto"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/store"
	"github.com/rs/zerolog/log"
)

type RevisionService interface {
	Create(identity model.Identity, req dto.CreateRevisionRequest, material string) (*dto.RevisionResponse, error)
	List(identity model.Identity) ([]dto.RevisionResponse, error)
	Get(identity model.Identity, revisionID string) (*model.Revision, error)
	Delete(identity model.Identity, revisionID string) error
	Subjects(identity model.Identity) ([]string, error)
}

type revisionService struct {
	store store.Store
}

func NewRevisionService(st store.Store) RevisionService {
	return &revisionService{store: st}
}

func (s *revisionService) Create(identity model.Identity, req dto.CreateRevisionRequest, material string) (*dto.RevisionResponse, error) {
	if material == "" {
		return nil, fmt.Errorf("%w: a revision needs a description or at least one readable file", apperr.ErrValidation)
	}

	style := req.QuestionStyle
	if style == "" {
		style = model.StyleFreeText
	}

	now := time.Now().UTC()
	rev := &model.Revision{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Subject:              req.Subject,
		Description:          req.Description,
		MaterialText:         material,
		DesiredQuestionCount: req.DesiredQuestionCount,
		QuestionStyle:        style,
		AccuracyThreshold:    req.AccuracyThreshold,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.CreateRevision(identity, rev); err != nil {
		return nil, err
	}
	log.Info().Str("revisionID", rev.ID).Str("subject", rev.Subject).Msg("Revision created")

	var resp dto.RevisionResponse
	copier.Copy(&resp, rev)
	return &resp, nil
}

func (s *revisionService) List(identity model.Identity) ([]dto.RevisionResponse, error) {
	revisions, err := s.store.ListRevisions(identity)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.RevisionResponse, 0, len(revisions))
	copier.Copy(&resp, &revisions)
	return resp, nil
}

func (s *revisionService) Get(identity model.Identity, revisionID string) (*model.Revision, error) {
	return s.store.GetRevision(identity, revisionID)
}

func (s *revisionService) Delete(identity model.Identity, revisionID string) error {
	return s.store.DeleteRevision(identity, revisionID)
}

func (s *revisionService) Subjects(identity model.Identity) ([]string, error) {
	return s.store.ListSubjects(identity)
}
