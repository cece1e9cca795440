package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/jobs"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/testutil"
	"github.com/yeisme/ebookshelf/pkg/scheduler"
)

func newSweeper(t *testing.T) *service.Sweeper {
	t.Helper()

	blobs, _ := testutil.NewBlobStore(t)

	return service.NewSweeper(testutil.NewRepository(t), blobs, configs.SweepConfig{}, nil)
}

func TestRegisterCronJobs(t *testing.T) {
	sched, err := scheduler.NewScheduler()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sched.Shutdown() })

	require.NoError(t, jobs.RegisterCronJobs(sched, configs.SweepConfig{Enabled: false}, nil))
	assert.Empty(t, sched.GetJobInfos())

	cfg := configs.SweepConfig{Enabled: true, Cron: configs.DefaultSweepCron}
	require.NoError(t, jobs.RegisterCronJobs(sched, cfg, newSweeper(t)))

	infos := sched.GetJobInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, jobs.JobBlobSweep, infos[0].Name)
	assert.Equal(t, configs.DefaultSweepCron, infos[0].CronExpr)

	assert.Error(t, jobs.RegisterCronJobs(nil, cfg, newSweeper(t)))
}

func TestRunSweepOnEmptyStore(t *testing.T) {
	require.NoError(t, jobs.RunSweep(context.Background(), newSweeper(t)))
}
