package broadcast

import (
	"context"

	"github.com/robfig/cron/v3"

	"leadflow-workers/internal/common/logger"
)

// Scheduler periodically executes draft campaigns whose time has come.
type Scheduler struct {
	cron    *cron.Cron
	service *Service
	log     logger.Logger
}

// NewScheduler registers RunDue under a seconds-resolution cron spec. A tick
// that fires while the previous one is still running is skipped.
func NewScheduler(spec string, service *Service, log logger.Logger) (*Scheduler, error) {
	log = logger.Component(log, "broadcast-scheduler")
	cl := cronLogger{log: log}
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		service: service,
		log:     log,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) tick() {
	n, err := s.service.RunDue(context.Background())
	if err != nil {
		s.log.WithError(err).Error("Scheduled run failed", nil)
		return
	}
	if n > 0 {
		s.log.Info("Scheduled campaigns executed", map[string]interface{}{"count": n})
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger routes cron's own messages through the service logger.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Debug(msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.WithError(err).Error(msg, kvFields(keysAndValues))
}

func kvFields(kv []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			fields[k] = kv[i+1]
		}
	}
	return fields
}
