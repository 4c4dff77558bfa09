package service

import (
	"context"

	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	log *zap.Logger
	db  Pinger
}

func NewHealthService(log *zap.Logger, db Pinger) *HealthService {
	return &HealthService{
		log: log,
		db:  db,
	}
}

func (s *HealthService) IsOK(ctx context.Context) (bool, error) {
	s.log.Debug("HealthService.IsOK()")

	if err := s.db.Ping(ctx); err != nil {
		return false, err
	}

	return true, nil
}
