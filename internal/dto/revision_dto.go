package dto

import "time"

// CreateRevisionRequest is the multipart form for creating a revision.
// Uploaded files travel alongside these fields as `files[]`.
type CreateRevisionRequest struct {
	Name                 string `form:"name" binding:"required"`
	Subject              string `form:"subject" binding:"required"`
	Description          string `form:"description"`
	DesiredQuestionCount int    `form:"desiredQuestionCount" binding:"required,min=1,max=50"`
	QuestionStyle        string `form:"questionStyle" binding:"omitempty,oneof=free-text multiple-choice"`
	AccuracyThreshold    int    `form:"accuracyThreshold" binding:"min=0,max=100"`
}

type RevisionResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Subject              string    `json:"subject"`
	Description          string    `json:"description,omitempty"`
	DesiredQuestionCount int       `json:"desired_question_count"`
	QuestionStyle        string    `json:"question_style"`
	AccuracyThreshold    int       `json:"accuracy_threshold"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type ExtractionResultResponse struct {
	Filename string `json:"filename"`
	Ok       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
}

// CreateRevisionResponse includes per-file extraction outcomes so the client
// can tell the user which uploads contributed material.
type CreateRevisionResponse struct {
	Revision RevisionResponse           `json:"revision"`
	Files    []ExtractionResultResponse `json:"files,omitempty"`
}

type SubjectsResponse struct {
	Subjects []string `json:"subjects"`
}
