package model

// Question is one generated question inside a run. The ID is a stable
// ordinal ("q1", "q2", ...) unique within the run; questions are immutable
// once generated.
type Question struct {
	RunID              string   `gorm:"primarykey;size:64" json:"-"`
	ID                 string   `gorm:"primarykey;size:16;column:qid" json:"id"`
	Index              int      `gorm:"column:ordinal;not null" json:"-"`
	Text               string   `gorm:"type:text;not null" json:"text"`
	Style              string   `gorm:"not null" json:"style"`
	Choices            []string `gorm:"serializer:json" json:"choices,omitempty"`
	CorrectChoiceIndex *int     `json:"correct_choice_index,omitempty"`
	Rationale          string   `gorm:"type:text" json:"rationale,omitempty"`
}

// ReferenceAnswer returns the known-correct answer text for deterministic
// fallback marking, or "" when the question has none (free-text questions).
func (q *Question) ReferenceAnswer() string {
	if q.CorrectChoiceIndex == nil {
		return ""
	}
	idx := *q.CorrectChoiceIndex
	if idx < 0 || idx >= len(q.Choices) {
		return ""
	}
	return q.Choices[idx]
}
