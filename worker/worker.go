package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sirupsen/logrus"
)

// Pool runs submitted jobs on a fixed number of goroutines. A job that panics is recovered and
// reported to sentry, and the goroutine that ran it keeps serving jobs.
type Pool struct {
	log  *logrus.Logger
	jobs chan func()
	wg   sync.WaitGroup
	once sync.Once
}

// New starts a Pool of n goroutines. If n is not positive, one goroutine per CPU is started.
func New(n int, log *logrus.Logger) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	p := &Pool{log: log, jobs: make(chan func(), n)}
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.work()
	}
	return p
}

// Submit queues f to be run by the pool, blocking while all goroutines are busy and the queue is
// full. Submit must not be called after Close.
func (p *Pool) Submit(f func()) {
	p.jobs <- f
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}

func (p *Pool) work() {
	defer p.wg.Done()
	for f := range p.jobs {
		p.run(f)
	}
}

func (p *Pool) run(f func()) {
	defer func() {
		if err := recover(); err != nil {
			p.log.Errorf("worker job panicked: %v", err)
			hub := sentry.CurrentHub().Clone()
			hub.Recover(oerror.New("worker job panicked: %v", err))
			hub.Flush(time.Second * 5)
		}
	}()
	f()
}
