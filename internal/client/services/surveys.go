package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
	"github.com/avolkovs/surveydesk/internal/client/models"
	"github.com/avolkovs/surveydesk/internal/common"
)

const (
	surveysTable   = "surveys"
	responsesTable = "survey_responses"
)

// SurveyService manages survey definitions and their responses on top of
// the generic table operations.
type SurveyService interface {
	List(ctx context.Context) ([]models.Survey, error)
	Get(ctx context.Context, id string) (*models.Survey, error)
	Create(ctx context.Context, s models.Survey) (*models.Survey, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	Delete(ctx context.Context, id string) error
	Publish(ctx context.Context, id string) error
	ListResponses(ctx context.Context, surveyID string) ([]models.SurveyResponse, error)
}

type surveyService struct {
	data   gateway.Data
	tokens TokenSource
}

func NewSurveyService(data gateway.Data, tokens TokenSource) SurveyService {
	return &surveyService{data: data, tokens: tokens}
}

func (s *surveyService) token() string {
	t, _ := s.tokens.GetToken()
	return t
}

func (s *surveyService) List(ctx context.Context) ([]models.Survey, error) {
	rows, err := s.data.FetchData(ctx, s.token(), surveysTable, gateway.Query{
		Order: []gateway.Order{{Column: "created_at", Ascending: false}},
	})
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	var out []models.Survey
	if err := decodeRows(rows, &out); err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return out, nil
}

func (s *surveyService) Get(ctx context.Context, id string) (*models.Survey, error) {
	rows, err := s.data.FetchData(ctx, s.token(), surveysTable, gateway.Query{
		Filters: []gateway.Filter{{Column: "id", Operator: gateway.OpEq, Value: id}},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("get survey %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("survey %s: %w", id, common.ErrNotFound)
	}
	var out []models.Survey
	if err := decodeRows(rows, &out); err != nil {
		return nil, fmt.Errorf("get survey %s: %w", id, err)
	}
	return &out[0], nil
}

func (s *surveyService) Create(ctx context.Context, sv models.Survey) (*models.Survey, error) {
	row, err := encodeRow(sv)
	if err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	rows, err := s.data.InsertData(ctx, s.token(), surveysTable, []map[string]any{row})
	if err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	if len(rows) == 0 {
		return &sv, nil
	}
	var out []models.Survey
	if err := decodeRows(rows, &out); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}
	return &out[0], nil
}

func (s *surveyService) Update(ctx context.Context, id string, patch map[string]any) error {
	if _, err := s.data.UpdateData(ctx, s.token(), surveysTable, patch, "id", id); err != nil {
		return fmt.Errorf("update survey %s: %w", id, err)
	}
	return nil
}

func (s *surveyService) Delete(ctx context.Context, id string) error {
	if _, err := s.data.DeleteData(ctx, s.token(), surveysTable, "id", id); err != nil {
		return fmt.Errorf("delete survey %s: %w", id, err)
	}
	return nil
}

// Publish flips the survey to its published state server-side, where the
// backing function also stamps the publication time.
func (s *surveyService) Publish(ctx context.Context, id string) error {
	if _, err := s.data.ExecuteRPC(ctx, s.token(), "publish_survey", map[string]any{"survey_id": id}); err != nil {
		return fmt.Errorf("publish survey %s: %w", id, err)
	}
	return nil
}

func (s *surveyService) ListResponses(ctx context.Context, surveyID string) ([]models.SurveyResponse, error) {
	rows, err := s.data.FetchData(ctx, s.token(), responsesTable, gateway.Query{
		Filters: []gateway.Filter{{Column: "survey_id", Operator: gateway.OpEq, Value: surveyID}},
		Order:   []gateway.Order{{Column: "submitted_at", Ascending: false}},
	})
	if err != nil {
		return nil, fmt.Errorf("list responses for %s: %w", surveyID, err)
	}
	var out []models.SurveyResponse
	if err := decodeRows(rows, &out); err != nil {
		return nil, fmt.Errorf("list responses for %s: %w", surveyID, err)
	}
	return out, nil
}

// decodeRows converts generic table rows into a typed slice via JSON.
func decodeRows(rows []map[string]any, out any) error {
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// encodeRow converts a typed value into a generic table row via JSON.
func encodeRow(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var row map[string]any
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, err
	}
	return row, nil
}
