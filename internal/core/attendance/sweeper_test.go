package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/model"
)

type fakeSweepTargets struct {
	fakePresence
	offline []model.Employee
	online  int
}

func (f *fakeSweepTargets) ListOfflineSince(ctx context.Context, threshold time.Time) ([]model.Employee, error) {
	return f.offline, nil
}

func (f *fakeSweepTargets) CountOnline(ctx context.Context) (int, error) {
	return f.online, nil
}

func TestSweepStartsBreaksForStaleEmployees(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	targets := &fakeSweepTargets{offline: []model.Employee{{ID: "e1"}}}
	svc := newTestService(att, &targets.fakePresence)

	sweeper := NewSweeper(svc, targets, 10*time.Second, 10*time.Second)
	sweeper.sweep(context.Background())

	require.Equal(t, 1, att.breaksStarted)
}

func TestSweepIsIdempotentPerOpenBreak(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	targets := &fakeSweepTargets{offline: []model.Employee{{ID: "e1"}}}
	svc := newTestService(att, &targets.fakePresence)

	sweeper := NewSweeper(svc, targets, 10*time.Second, 10*time.Second)
	sweeper.sweep(context.Background())
	sweeper.sweep(context.Background())

	// The second pass finds the break still open and starts nothing new.
	require.Equal(t, 1, att.breaksStarted)
}
