package internal

import (
	"context"
	"fmt"

	"github.com/hbomb79/smartmedia/pkg/logger"
	"github.com/robfig/cron/v3"
)

var cronLog = logger.Get("Cron")

type (
	// cronLogger adapts our logger to the interface
	// expected by robfig/cron.
	cronLogger struct {
		logger logger.Logger
	}

	scheduledJob struct {
		label string
		spec  string
		run   func(context.Context) error
	}

	// cronService is a RunnableService which executes each job on its cron
	// schedule until the context is cancelled. A job never overlaps with
	// itself: if the previous execution is still running when the schedule
	// fires again, the new execution is skipped.
	cronService struct {
		jobs []scheduledJob
	}
)

func newCronService(jobs ...scheduledJob) *cronService {
	return &cronService{jobs: jobs}
}

func (service *cronService) Run(ctx context.Context) error {
	adapter := &cronLogger{cronLog}
	c := cron.New(
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	for _, job := range service.jobs {
		if _, err := c.AddFunc(job.spec, service.wrap(ctx, job)); err != nil {
			return fmt.Errorf("failed to schedule %s with spec '%s': %w", job.label, job.spec, err)
		}

		cronLog.Emit(logger.NEW, "Scheduled %s (%s)\n", job.label, job.spec)
	}

	c.Start()
	<-ctx.Done()

	cronLog.Emit(logger.STOP, "Stopping scheduler, waiting for running jobs to finish...\n")
	<-c.Stop().Done()

	return nil
}

func (service *cronService) wrap(ctx context.Context, job scheduledJob) func() {
	return func() {
		if err := job.run(ctx); err != nil {
			cronLog.Errorf("Scheduled %s failed: %s\n", job.label, err)
		}
	}
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf("%s %v\n", msg, keysAndValues)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorf("%s: %s %v\n", msg, err, keysAndValues)
}
