package worker

import (
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// IJob cron job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron driven job, a tick is skipped while the previous one is still running
type BaseJob struct {
	Name    string
	Cron    *cron.Cron
	OnWork  OnWork
	running int32
}

// Schedule create the cron in location and register spec
func (job *BaseJob) Schedule(location, spec string) error {
	l, err := time.LoadLocation(location)
	if err != nil {
		return err
	}

	job.Cron = cron.New(cron.WithLocation(l))
	_, err = job.Cron.AddFunc(spec, job.Run)
	return err
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) IsRunning() bool {
	return atomic.LoadInt32(&job.running) == 1
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	if err := job.OnWork(); err != nil {
		logrus.WithError(err).WithField("worker", job.Name).Errorln("run")
	}
}
