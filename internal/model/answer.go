package model

import "time"

// Answer is the marked result for one (run, question) pair. At most one live
// Answer exists per pair; resubmission overwrites the previous one.
type Answer struct {
	RunID         string    `gorm:"primarykey;size:64" json:"-"`
	QuestionID    string    `gorm:"primarykey;size:16" json:"question_id"`
	StudentAnswer string    `gorm:"type:text;not null" json:"student_answer"`
	Tier          Tier      `gorm:"not null" json:"tier"`
	CorrectAnswer string    `gorm:"type:text" json:"correct_answer"`
	Explanation   string    `gorm:"type:text" json:"explanation"`
	GradedAt      time.Time `json:"graded_at"`
}
