// Package services contains the per-resource application services for the
// surveydesk client: thin wrappers that attach the current bearer token to
// gateway calls and translate rows into domain types.
package services

import (
	"context"
	"encoding/json"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
)

// TokenSource supplies the bearer credential for backend requests. The
// session manager implements it.
type TokenSource interface {
	GetToken() (string, bool)
}

// RecordService exposes the backend's generic table operations with the
// session token attached. A missing token is passed through as anonymous —
// the backend decides what anonymous callers may touch.
type RecordService interface {
	Fetch(ctx context.Context, table string, q gateway.Query) ([]map[string]any, error)
	Insert(ctx context.Context, table string, rows []map[string]any) ([]map[string]any, error)
	Update(ctx context.Context, table string, patch map[string]any, matchColumn string, matchValue any) ([]map[string]any, error)
	Delete(ctx context.Context, table, matchColumn string, matchValue any) ([]map[string]any, error)
	CallFunction(ctx context.Context, function string, params map[string]any) (json.RawMessage, error)
}

type recordService struct {
	data   gateway.Data
	tokens TokenSource
}

// NewRecordService constructs a RecordService bound to the given gateway
// and token source.
func NewRecordService(data gateway.Data, tokens TokenSource) RecordService {
	return &recordService{data: data, tokens: tokens}
}

func (s *recordService) token() string {
	t, _ := s.tokens.GetToken()
	return t
}

func (s *recordService) Fetch(ctx context.Context, table string, q gateway.Query) ([]map[string]any, error) {
	return s.data.FetchData(ctx, s.token(), table, q)
}

func (s *recordService) Insert(ctx context.Context, table string, rows []map[string]any) ([]map[string]any, error) {
	return s.data.InsertData(ctx, s.token(), table, rows)
}

func (s *recordService) Update(ctx context.Context, table string, patch map[string]any, matchColumn string, matchValue any) ([]map[string]any, error) {
	return s.data.UpdateData(ctx, s.token(), table, patch, matchColumn, matchValue)
}

func (s *recordService) Delete(ctx context.Context, table, matchColumn string, matchValue any) ([]map[string]any, error) {
	return s.data.DeleteData(ctx, s.token(), table, matchColumn, matchValue)
}

func (s *recordService) CallFunction(ctx context.Context, function string, params map[string]any) (json.RawMessage, error) {
	return s.data.ExecuteRPC(ctx, s.token(), function, params)
}
