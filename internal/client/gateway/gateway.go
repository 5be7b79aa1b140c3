package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avolkovs/surveydesk/internal/client/models"
)

// Auth is the stateless façade over the backend's authentication operations.
//
// Contract:
//   - Ordinary backend-reported failures (wrong password, expired session,
//     rejected update) come back as Result{Success: false, Error: "..."}
//     with a nil Go error.
//   - A non-nil error means the call itself failed (network unreachable,
//     malformed response) and wraps common.ErrUnavailable where applicable.
type Auth interface {
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Result, error)
	SignIn(ctx context.Context, email, password string) (*Result, error)
	SignOut(ctx context.Context, token string) (*Result, error)
	VerifySession(ctx context.Context, token string) (*Result, error)
	GetCurrentUser(ctx context.Context, token string) (*Result, error)
	UpdateUser(ctx context.Context, token string, patch map[string]any) (*Result, error)
	ResetPassword(ctx context.Context, email string) (*Result, error)
	UpdatePassword(ctx context.Context, token, newPassword string) (*Result, error)
}

// Data exposes the backend's generic table operations. Unlike Auth, these
// wrappers surface backend-reported failures as Go errors wrapping
// common.ErrBackend, which suits their callers (the per-resource services).
type Data interface {
	FetchData(ctx context.Context, token, table string, q Query) ([]map[string]any, error)
	InsertData(ctx context.Context, token, table string, rows []map[string]any) ([]map[string]any, error)
	UpdateData(ctx context.Context, token, table string, patch map[string]any, matchColumn string, matchValue any) ([]map[string]any, error)
	DeleteData(ctx context.Context, token, table, matchColumn string, matchValue any) ([]map[string]any, error)
	ExecuteRPC(ctx context.Context, token, function string, params map[string]any) (json.RawMessage, error)
}

// Assist exposes the backend's AI passthrough. The query is forwarded to the
// provider selected by service ("" for the backend default); params carries
// provider-specific options such as model or max_tokens.
type Assist interface {
	Process(ctx context.Context, token, query, service string, params map[string]any) (string, error)
}

// Storage exposes the backend's bucket operations.
type Storage interface {
	UploadFile(ctx context.Context, token, bucket, path string, data []byte, contentType string) (*Upload, error)
	DownloadFile(ctx context.Context, token, bucket, path string) ([]byte, error)
	DeleteFile(ctx context.Context, token, bucket, path string) error
	ListFiles(ctx context.Context, token, bucket, folder string) ([]models.StoredFile, error)
	CreateSignedURL(ctx context.Context, token, bucket, path string, expiresIn time.Duration) (string, error)
	PublicURL(ctx context.Context, bucket, path string) (string, error)
}

// Client is the full backend API surface the application talks to.
type Client interface {
	Auth
	Data
	Assist
	Storage

	// Ping checks backend reachability.
	Ping(ctx context.Context) error
}

// Envelope is the common part of every backend response body.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// setFailure marks the envelope failed, keeping a message already reported
// by the backend over the fallback.
func (e *Envelope) setFailure(msg string) {
	e.Success = false
	if e.Error == "" {
		e.Error = msg
	}
}

// Result is the normalized outcome of an Auth operation.
type Result struct {
	Envelope
	User    *models.User    `json:"user,omitempty"`
	Session *models.Session `json:"session,omitempty"`
}

// Upload is the outcome of a successful file upload.
type Upload struct {
	Path      string
	PublicURL string
}

// Filter operators accepted by the backend's query endpoint.
const (
	OpEq    = "eq"
	OpNeq   = "neq"
	OpGt    = "gt"
	OpGte   = "gte"
	OpLt    = "lt"
	OpLte   = "lte"
	OpLike  = "like"
	OpILike = "ilike"
	OpIn    = "in"
)

// Filter is a single column predicate. Operator defaults to OpEq when empty.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator,omitempty"`
	Value    any    `json:"value"`
}

// Order is a single sort directive.
type Order struct {
	Column    string `json:"column"`
	Ascending bool   `json:"ascending"`
}

// Query describes a table read: projection, predicates, ordering and
// pagination. The zero value selects everything.
type Query struct {
	Select  string   `json:"select,omitempty"`
	Filters []Filter `json:"filters,omitempty"`
	Order   []Order  `json:"order,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
}
