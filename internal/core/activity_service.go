package core

import (
	"context"

	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/repository"
)

const defaultActivityLimit = 20

type ActivityService struct {
	activities repository.ActivityRepository
}

func NewActivityService(activities repository.ActivityRepository) *ActivityService {
	return &ActivityService{activities: activities}
}

// Recent returns the global feed, newest first.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.activities.ListRecent(ctx, limit)
}

// ForEmployee returns one employee's feed, optionally restricted to types.
func (s *ActivityService) ForEmployee(ctx context.Context, employeeID string, limit int, types []model.ActivityType) ([]model.Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return s.activities.ListByEmployee(ctx, employeeID, limit, types)
}
