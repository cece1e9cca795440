// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/ebookshelf/pkg/configs"
	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/log"
	"github.com/yeisme/ebookshelf/pkg/scheduler"
)

// sweepTimeout 单次清理的最长运行时间.
const sweepTimeout = 10 * time.Minute

// RegisterCronJobs 配置业务定时任务：
//   - 按 sweep.cron 清理没有记录引用的封面与 PDF（sweep.enabled=false 时不注册）
func RegisterCronJobs(sched *scheduler.Scheduler, cfg configs.SweepConfig, sweeper *service.Sweeper) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if !cfg.Enabled {
		log.Logger().Info().Msg("orphan blob sweep disabled")
		return nil
	}

	if sweeper == nil {
		return errors.New("sweeper is nil")
	}

	return sched.AddCron(sched.Context(), JobBlobSweep, cfg.Cron, func(ctx context.Context) error {
		return RunSweep(ctx, sweeper)
	})
}

// RunSweep 执行一次孤儿文件清理，附带任务名的 logger.
func RunSweep(ctx context.Context, sweeper *service.Sweeper) error {
	l := log.Logger().With().Str("job", JobBlobSweep).Logger()
	ctx = ctxPkg.WithLogger(ctx, l)

	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	res, err := sweeper.Run(ctx)
	if err != nil {
		l.Error().Err(err).Msg("orphan blob sweep failed")
		return err
	}

	if res.Failed > 0 {
		l.Warn().Int("failed", res.Failed).Msg("some orphan blobs could not be removed")
	}

	return nil
}
