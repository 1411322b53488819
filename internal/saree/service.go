package saree

import (
	"context"
	"log/slog"

	sareeDatamodel "github.com/frahmantamala/couture-bookkeeping/internal/core/datamodel/saree"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/workflow"
)

// RepositoryAPI is shared with the procurement workflow, which owns every write.
type RepositoryAPI interface {
	Create(ctx context.Context, s *sareeDatamodel.Saree) error
	GetByID(ctx context.Context, id string) (*sareeDatamodel.Saree, error)
	List(ctx context.Context) ([]*sareeDatamodel.Saree, error)
	ApplyReview(ctx context.Context, id string, status workflow.Status, sellingPriceUSD *float64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Saree, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list sarees", "error", err)
		return nil, err
	}
	s.logger.Debug("retrieved sarees", "count", len(rows))
	return FromDataModels(rows), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Saree, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}
