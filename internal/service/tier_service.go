package service

import (
	"context"

	"go-ticket-ledger/internal/model"
	"go-ticket-ledger/internal/repository"

	"github.com/google/uuid"
)

type TierService interface {
	GetByTierID(ctx context.Context, tierID uuid.UUID) (*model.Tier, error)
	UpdateByTierID(ctx context.Context, tierID uuid.UUID, params model.UpdateTierParams) (*model.Tier, error)
	// AdjustCapacityByTierID moves total capacity by delta; remaining is
	// recomputed by the store, never overwritten.
	AdjustCapacityByTierID(ctx context.Context, tierID uuid.UUID, delta int) (*model.Tier, error)
	DeleteByTierID(ctx context.Context, tierID uuid.UUID) error
}

type TierServiceImpl struct {
	repo repository.TierRepository
}

func NewTierService(repo repository.TierRepository) TierService {
	return &TierServiceImpl{repo: repo}
}

func (s *TierServiceImpl) GetByTierID(ctx context.Context, tierID uuid.UUID) (*model.Tier, error) {
	return s.repo.FindByTierID(ctx, tierID)
}

func (s *TierServiceImpl) UpdateByTierID(ctx context.Context, tierID uuid.UUID, params model.UpdateTierParams) (*model.Tier, error) {
	tier, err := s.repo.FindByTierID(ctx, tierID)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, tier.ID, params)
}

func (s *TierServiceImpl) AdjustCapacityByTierID(ctx context.Context, tierID uuid.UUID, delta int) (*model.Tier, error) {
	tier, err := s.repo.FindByTierID(ctx, tierID)
	if err != nil {
		return nil, err
	}
	return s.repo.AdjustCapacity(ctx, tier.ID, delta)
}

func (s *TierServiceImpl) DeleteByTierID(ctx context.Context, tierID uuid.UUID) error {
	tier, err := s.repo.FindByTierID(ctx, tierID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, tier.ID)
}
