package model

import "time"

// RunState is the life-cycle state of a quiz run.
type RunState string

const (
	RunCreated    RunState = "created"
	RunPopulated  RunState = "populated"
	RunInProgress RunState = "in_progress"
	RunCompleted  RunState = "completed"
)

// Run is one playthrough of a Revision. Each run holds its own generated
// question list; the cursor tracks how many questions have been served.
type Run struct {
	ID          string     `gorm:"primarykey;size:64" json:"id"`
	RevisionID  string     `gorm:"not null;index" json:"revision_id"`
	UserID      *string    `gorm:"index" json:"user_id,omitempty"`
	SessionID   *string    `gorm:"index" json:"-"`
	State       RunState   `gorm:"not null;default:'created'" json:"state"`
	Cursor      int        `gorm:"not null;default:0" json:"cursor"`
	Synthetic   bool       `gorm:"not null;default:false" json:"-"`
	Questions   []Question `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	Answers     []Answer   `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// QuestionByID returns the question with the given ordinal id, or nil.
func (r *Run) QuestionByID(questionID string) *Question {
	for i := range r.Questions {
		if r.Questions[i].ID == questionID {
			return &r.Questions[i]
		}
	}
	return nil
}
