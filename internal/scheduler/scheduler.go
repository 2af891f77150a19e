// Package scheduler runs the periodic background refresh.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Scheduler struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log,
	}
}

// Every runs job at the given interval. A non-positive interval registers
// nothing.
func (s *Scheduler) Every(interval time.Duration, name string, job func()) error {
	if interval <= 0 {
		return nil
	}
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.log.WithField("job", name).Debug("running scheduled job")
		job()
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"job": name, "interval": interval}).Info("job scheduled")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
