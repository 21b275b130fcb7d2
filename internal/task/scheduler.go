// Package task 提供后台维护任务的注册与调度
package task

import (
	"context"
	"time"

	"github.com/petalpost/proposal-link-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	CronSpec() string              // cron 表达式，标准五段格式
	IsStartupRun() bool            // 是否立即执行一次
}

// Scheduler 任务调度器，按 cron 表达式触发任务
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

// startTask 启动单个任务
func (s *Scheduler) startTask(task Task) {

	schedule, err := cron.ParseStandard(task.CronSpec())
	if err != nil {
		s.logger.Error("task has invalid cron spec, skipped",
			zap.String("name", task.Name()),
			zap.String("cron", task.CronSpec()),
			zap.Error(err))
		return
	}

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		runOnce := func(startup bool) {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("task run panic",
						zap.String("name", task.Name()),
						zap.Any("panic", r),
						zap.Stack("stack"))
				}
			}()
			s.logger.Info("task running", zap.String("name", task.Name()), zap.Bool("startupRun", startup))
			if err := task.Run(context.Background()); err != nil {
				s.logger.Error("task running error",
					zap.String("name", task.Name()),
					zap.Bool("startupRun", startup),
					zap.Error(err))
			}
		}

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			runOnce(true)
		}

		timer := time.NewTimer(time.Until(schedule.Next(time.Now())))
		defer timer.Stop()

		// 按 cron 计划执行
		for {
			select {
			case <-timer.C:
				runOnce(false)
				timer.Reset(time.Until(schedule.Next(time.Now())))
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}
