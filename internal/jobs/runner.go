package jobs

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// Task is a unit of periodic background work with its own cron schedule.
type Task interface {
	Name() string
	Schedule() string
	Run()
}

// Runner executes tasks on their cron schedules. A task still running when
// its next tick fires is skipped, not stacked.
type Runner struct {
	cron    *cron.Cron
	tasks   []Task
	running mapset.Set[string]
	mu      sync.Mutex
}

func NewRunner(tasks []Task) *Runner {
	return &Runner{
		cron:    cron.New(),
		tasks:   tasks,
		running: mapset.NewSet[string](),
	}
}

func (r *Runner) Start() error {
	for _, task := range r.tasks {
		err := r.cron.AddFunc(task.Schedule(), func() {
			r.mu.Lock()
			if r.running.Contains(task.Name()) {
				r.mu.Unlock()
				logrus.Warnf("task %s is still running, skipping tick", task.Name())
				return
			}
			r.running.Add(task.Name())
			r.mu.Unlock()

			defer func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				r.running.Remove(task.Name())
			}()

			task.Run()
		})
		if err != nil {
			return err
		}
	}

	r.cron.Start()
	return nil
}

func (r *Runner) Stop() {
	logrus.Infof("stopping all tasks")
	r.cron.Stop()
}
