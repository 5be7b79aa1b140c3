package models

import "time"

// SurveyStatus is the lifecycle state of a survey.
type SurveyStatus string

const (
	SurveyStatusDraft     SurveyStatus = "draft"
	SurveyStatusPublished SurveyStatus = "published"
	SurveyStatusClosed    SurveyStatus = "closed"
)

// QuestionType classifies a survey question.
type QuestionType string

const (
	QuestionTypeText   QuestionType = "text"
	QuestionTypeChoice QuestionType = "choice"
	QuestionTypeRating QuestionType = "rating"
)

// Question is a single item on a survey form.
type Question struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Label    string       `json:"label"`
	Required bool         `json:"required,omitempty"`
	Options  []string     `json:"options,omitempty"`
}

// Survey is a row of the surveys table.
type Survey struct {
	ID          string       `json:"id,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      SurveyStatus `json:"status,omitempty"`
	Questions   []Question   `json:"questions,omitempty"`
	CreatedBy   string       `json:"created_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitempty"`
}

// SurveyResponse is a submitted answer set for a survey.
type SurveyResponse struct {
	ID          string         `json:"id,omitempty"`
	SurveyID    string         `json:"survey_id"`
	Answers     map[string]any `json:"answers"`
	SubmittedAt time.Time      `json:"submitted_at,omitempty"`
}
