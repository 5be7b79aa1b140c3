package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
	"github.com/avolkovs/surveydesk/internal/client/models"
)

// defaultSignedURLTTL matches the backend's default expiry for signed links.
const defaultSignedURLTTL = 60 * time.Second

// FileService wraps the storage operations against a single configured
// bucket with the session token attached.
type FileService interface {
	// Upload stores data under remotePath. An empty remotePath gets a
	// generated unique name that keeps sourceName's extension.
	Upload(ctx context.Context, remotePath, sourceName string, data []byte, contentType string) (*gateway.Upload, error)
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, folder string) ([]models.StoredFile, error)
	SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
	PublicURL(ctx context.Context, path string) (string, error)
}

type fileService struct {
	storage gateway.Storage
	tokens  TokenSource
	bucket  string
}

func NewFileService(storage gateway.Storage, tokens TokenSource, bucket string) FileService {
	return &fileService{storage: storage, tokens: tokens, bucket: bucket}
}

func (s *fileService) token() string {
	t, _ := s.tokens.GetToken()
	return t
}

func (s *fileService) Upload(ctx context.Context, remotePath, sourceName string, data []byte, contentType string) (*gateway.Upload, error) {
	if remotePath == "" {
		remotePath = uuid.NewString() + filepath.Ext(sourceName)
	}
	up, err := s.storage.UploadFile(ctx, s.token(), s.bucket, remotePath, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", remotePath, err)
	}
	return up, nil
}

func (s *fileService) Download(ctx context.Context, path string) ([]byte, error) {
	data, err := s.storage.DownloadFile(ctx, s.token(), s.bucket, path)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return data, nil
}

func (s *fileService) Delete(ctx context.Context, path string) error {
	if err := s.storage.DeleteFile(ctx, s.token(), s.bucket, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *fileService) List(ctx context.Context, folder string) ([]models.StoredFile, error) {
	files, err := s.storage.ListFiles(ctx, s.token(), s.bucket, folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}
	return files, nil
}

func (s *fileService) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 {
		expiresIn = defaultSignedURLTTL
	}
	u, err := s.storage.CreateSignedURL(ctx, s.token(), s.bucket, path, expiresIn)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", path, err)
	}
	return u, nil
}

func (s *fileService) PublicURL(ctx context.Context, path string) (string, error) {
	u, err := s.storage.PublicURL(ctx, s.bucket, path)
	if err != nil {
		return "", fmt.Errorf("public url %s: %w", path, err)
	}
	return u, nil
}
