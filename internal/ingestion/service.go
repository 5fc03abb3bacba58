package ingestion

import (
	"context"

	"github.com/gin-gonic/gin"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/storage"
	"github.com/aevon-lab/project-indica/internal/pipeline"
)

// Transformer recomputes indicators for a change synchronously.
type Transformer interface {
	Transform(ctx context.Context, evt *v1.ChangeEvent) ([]pipeline.CommitResult, error)
}

// Notifier is told when a change was appended to the change log.
type Notifier interface {
	Notify()
}

type Service struct {
	transformer      Transformer
	changes          storage.ChangeLog
	notifier         Notifier
	maxBodySizeBytes int
}

type Option func(*Service)

// WithChangeLog enables asynchronous intake (?async=true).
func WithChangeLog(changes storage.ChangeLog, notifier Notifier) Option {
	return func(s *Service) {
		s.changes = changes
		s.notifier = notifier
	}
}

func NewService(transformer Transformer, maxBodySizeMB int, opts ...Option) *Service {
	if transformer == nil {
		panic("ingestion: transformer must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	s := &Service{
		transformer:      transformer,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/changes", s.IngestHandler)
}
