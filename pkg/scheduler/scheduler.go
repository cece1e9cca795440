// Package scheduler 提供定时任务调度功能，使用 gocron/v2 库.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/yeisme/ebookshelf/pkg/log"
)

// JobStatus 表示任务的状态类型.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 任务已调度
	StatusRunning   JobStatus = "running"   // 任务正在运行
	StatusError     JobStatus = "error"     // 上次运行出错
)

// JobFunc 任务函数，返回的错误会记录到 JobInfo.
type JobFunc func(ctx context.Context) error

// JobInfo 表示定时任务的信息，用于可视化和监控.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Scheduler 是定时任务调度器的实现.
type Scheduler struct {
	scheduler gocron.Scheduler
	jobs      map[string]gocron.Job // 以任务名称为键
	jobInfos  map[string]*JobInfo   // 以任务名称为键
	mu        sync.RWMutex
	logger    *zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler 创建一个新的 Scheduler 实例.
func NewScheduler(opts ...gocron.SchedulerOption) (*Scheduler, error) {
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		scheduler: s,
		jobs:      make(map[string]gocron.Job),
		jobInfos:  make(map[string]*JobInfo),
		logger:    log.Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// AddCron 添加一个基于 cron 表达式的定时任务；同一任务不会并发执行.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, job JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job with name %s already exists", name)
	}

	j, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() { s.run(ctx, name, job) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}

	now := time.Now()

	s.jobs[name] = j
	s.jobInfos[name] = &JobInfo{
		ID:        j.ID().String(),
		Name:      name,
		CronExpr:  cronExpr,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("Added cron job")

	return nil
}

// run 执行任务并记录状态，任务 panic 时恢复.
func (s *Scheduler) run(ctx context.Context, name string, job JobFunc) {
	s.setStatus(name, StatusRunning, nil)

	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job: %v", r)
			s.logger.Error().Str("job", name).Interface("panic", r).Msg("Job panicked")
		}

		if err != nil {
			s.setStatus(name, StatusError, err)
			return
		}

		s.setStatus(name, StatusScheduled, nil)
	}()

	err = job(ctx)
}

// RunNow 立即执行一次指定任务（不影响下次调度时间）.
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	j, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job with name %s does not exist", name)
	}

	return j.RunNow()
}

// RemoveJobByName 通过名称移除任务.
func (s *Scheduler) RemoveJobByName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job with name %s does not exist", name)
	}

	if err := s.scheduler.RemoveJob(job.ID()); err != nil {
		return err
	}

	delete(s.jobs, name)
	delete(s.jobInfos, name)

	s.logger.Info().Str("job", name).Msg("Removed job")

	return nil
}

// GetJobInfoByName 通过名称获取任务信息.
func (s *Scheduler) GetJobInfoByName(name string) (JobInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.jobInfos[name]
	if !exists {
		return JobInfo{}, fmt.Errorf("job with name %s does not exist", name)
	}

	s.refresh(name, info)

	return *info, nil
}

// GetJobInfos 返回所有定时任务的信息，按名称排序.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]JobInfo, 0, len(s.jobInfos))
	for name, info := range s.jobInfos {
		s.refresh(name, info)
		jobs = append(jobs, *info)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })

	return jobs
}

// Start 启动调度器.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Starting scheduler")
	s.scheduler.Start()
}

// Shutdown 停止调度器并等待运行中的任务结束.
func (s *Scheduler) Shutdown() error {
	s.logger.Info().Msg("Stopping scheduler")
	s.cancel()

	return s.scheduler.Shutdown()
}

// Context 调度器生命周期 context，Shutdown 时取消.
func (s *Scheduler) Context() context.Context {
	return s.ctx
}

// refresh 从 gocron 同步下次与上次运行时间（调用方持有锁）.
func (s *Scheduler) refresh(name string, info *JobInfo) {
	job, ok := s.jobs[name]
	if !ok {
		return
	}

	if nextRun, err := job.NextRun(); err == nil {
		info.NextRun = nextRun
	}

	if lastRun, err := job.LastRun(); err == nil {
		info.LastRun = lastRun
	}
}

// setStatus 更新任务状态.
func (s *Scheduler) setStatus(name string, status JobStatus, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, exists := s.jobInfos[name]
	if !exists {
		return
	}

	now := time.Now()

	info.Status = status
	info.UpdatedAt = now

	switch {
	case err != nil:
		info.Error = err.Error()
	case status == StatusScheduled:
		info.Error = ""
		info.LastSuccess = now
	}
}
