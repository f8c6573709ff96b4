package sources

import (
	"context"

	"github.com/ybotello/finstream-backend/internal/domain"
)

// TransactionSource is one named upstream producer. New sources are added by
// registration, never by touching the aggregation pipeline.
type TransactionSource interface {
	Name() string
	// Fetch returns all transactions the source currently has available.
	Fetch(ctx context.Context) ([]*domain.Transaction, error)
}

// Registry holds the registered source set in registration order.
type Registry struct {
	sources []TransactionSource
}

func NewRegistry(sources ...TransactionSource) *Registry {
	r := &Registry{}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

func (r *Registry) Register(s TransactionSource) {
	if s == nil {
		return
	}
	r.sources = append(r.sources, s)
}

func (r *Registry) All() []TransactionSource {
	out := make([]TransactionSource, len(r.sources))
	copy(out, r.sources)
	return out
}

func (r *Registry) Len() int { return len(r.sources) }
