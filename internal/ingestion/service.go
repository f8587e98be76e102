package ingestion

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logistics-lab/palletbook/internal/catalog"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/validation"
)

// DistributorResolver looks up the catalog entry of a distributor id.
type DistributorResolver interface {
	Resolve(ctx context.Context, id string) (*catalog.Distributor, error)
}

// MutationObserver receives the outcome of every mutation. *metrics.Metrics satisfies it.
type MutationObserver interface {
	ObserveMutation(op, outcome string, elapsed time.Duration)
}

// Options carries the optional collaborators of a Service.
type Options struct {
	// Resolver, if set, rejects unknown distributors and fills distributor names.
	Resolver DistributorResolver

	Observer      MutationObserver
	MaxBodySizeMB int
}

// Service is the write side: it keeps work records and their monthly
// summaries consistent by mutating both in one store transaction.
type Service struct {
	store            storage.Transactor
	validator        *validation.Validator
	resolver         DistributorResolver
	observer         MutationObserver
	maxBodySizeBytes int

	now   func() time.Time
	newID func() (string, error)
}

func NewService(store storage.Transactor, val *validation.Validator, opts Options) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if val == nil {
		panic("ingestion: validator must not be nil")
	}
	if opts.MaxBodySizeMB <= 0 {
		opts.MaxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		store:            store,
		validator:        val,
		resolver:         opts.Resolver,
		observer:         opts.Observer,
		maxBodySizeBytes: opts.MaxBodySizeMB * 1024 * 1024,
		now:              time.Now,
		newID:            newRecordID,
	}
}

// newRecordID returns a time-ordered UUIDv7.
func newRecordID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// RegisterRoutes registers the write routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	companies := r.Group("/v1/companies/:company_id")
	companies.POST("/records", s.CreateHandler)
	companies.PUT("/records/:record_id", s.UpdateHandler)
	companies.DELETE("/records/:record_id", s.DeleteHandler)
	companies.POST("/summaries/:year/:month/rebuild", s.RebuildHandler)
}
