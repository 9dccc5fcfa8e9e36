package workers

import (
	"context"
	"fmt"
	"time"

	"homefix_backend/internal/logger"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

// Job — периодическая задача
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler запускает задачи по cron-расписанию. Повторный запуск задачи,
// пока идёт предыдущий, пропускается.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:  ctx,
	}
}

// Add регистрирует задачу. Пустое расписание отключает её.
func (s *Scheduler) Add(spec string, job Job) error {
	if spec == "" {
		logger.Info("job disabled", "job", job.Name())
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	logger.Info("job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "job", job.Name(), "panic", fmt.Sprint(r))
		}
	}()
	if err := job.Run(ctx); err != nil {
		logger.WorkerLog(job.Name(), "run", 0, err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждёт текущие задачи, но не дольше ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.Warn("scheduler stop timed out")
	}
}
