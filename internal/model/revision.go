package model

import (
	"time"
)

// QuestionStyle selects how questions for a revision are generated and marked.
const (
	StyleFreeText       = "free-text"
	StyleMultipleChoice = "multiple-choice"
)

// Revision is a user-authored definition of study material and quiz
// parameters. Immutable after creation except deletion; deletion cascades to
// all of its runs.
type Revision struct {
	ID                   string     `gorm:"primarykey;size:64" json:"id"`
	UserID               *string    `gorm:"index" json:"user_id,omitempty"`
	SessionID            *string    `gorm:"index" json:"-"`
	Name                 string     `gorm:"not null" json:"name"`
	Subject              string     `gorm:"not null;index" json:"subject"`
	Description          string     `gorm:"type:text" json:"description,omitempty"`
	MaterialText         string     `gorm:"type:text" json:"-"`
	DesiredQuestionCount int        `gorm:"not null" json:"desired_question_count"`
	QuestionStyle        string     `gorm:"not null;default:'free-text'" json:"question_style"`
	AccuracyThreshold    int        `gorm:"not null" json:"accuracy_threshold"`
	Runs                 []Run      `gorm:"foreignKey:RevisionID;constraint:OnDelete:CASCADE" json:"runs,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
