package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/assistant-manager-sim/internal/logger"
)

func TestNewSchedulerRejectsBadSchedule(t *testing.T) {
	svc := newService(t, newFakeSource(), nil, nil)
	_, err := NewScheduler(svc, "every tuesday", time.Minute, logger.Discard())
	assert.Error(t, err)
}

func TestSchedulerJobRunsForecast(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, newFakeSource(), repo, nil)
	s, err := NewScheduler(svc, "0 6 * * *", time.Minute, logger.Discard())
	require.NoError(t, err)

	s.runJob()
	require.Len(t, repo.saved, 1)
	assert.Equal(t, 3, repo.saved[0].Horizon)
}

func TestSchedulerStartStop(t *testing.T) {
	svc := newService(t, newFakeSource(), nil, nil)
	s, err := NewScheduler(svc, "@every 1h", 0, logger.Discard())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
