package dto

import "time"

type RunResponse struct {
	ID            string    `json:"id"`
	RevisionID    string    `json:"revision_id"`
	State         string    `json:"state"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type QuestionResponse struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Style   string   `json:"style"`
	Choices []string `json:"choices,omitempty"`
}

// NextQuestionResponse wraps the question so "no more questions" is an
// explicit null rather than an error.
type NextQuestionResponse struct {
	Question *QuestionResponse `json:"question"`
	Done     bool              `json:"done"`
}

type QuestionCountResponse struct {
	Count int `json:"count"`
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

type AnswerResponse struct {
	QuestionID    string    `json:"question_id"`
	StudentAnswer string    `json:"student_answer"`
	Tier          string    `json:"tier"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation"`
	GradedAt      time.Time `json:"graded_at"`
}

type RunSummaryResponse struct {
	RunID         string           `json:"run_id"`
	RevisionID    string           `json:"revision_id"`
	State         string           `json:"state"`
	QuestionCount int              `json:"question_count"`
	AnsweredCount int              `json:"answered_count"`
	Accuracy      float64          `json:"accuracy"`
	ThresholdMet  bool             `json:"threshold_met"`
	Answers       []AnswerResponse `json:"answers"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
}

type CompletedRunsResponse struct {
	Runs []RunSummaryResponse `json:"runs"`
}

type IdentityResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
}
