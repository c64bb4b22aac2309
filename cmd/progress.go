package cmd

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// logrusProgressSink logs a periodic update every logEvery steps, giving the
// autotuner's injected ProgressSink something concrete without coupling the
// core to a logging dependency. Step is called concurrently from every
// measureRMIs worker, so done is an atomic counter rather than a plain int.
type logrusProgressSink struct {
	total    int
	done     atomic.Int64
	logEvery int64
}

func newLogrusProgressSink() *logrusProgressSink {
	return &logrusProgressSink{logEvery: 25}
}

func (s *logrusProgressSink) Begin(total int) {
	s.total = total
	s.done.Store(0)
	logrus.Debugf("autotune: starting batch of %d configurations", total)
}

func (s *logrusProgressSink) Step() {
	done := s.done.Add(1)
	if done%s.logEvery == 0 || int(done) == s.total {
		logrus.Debugf("autotune: %d/%d configurations trained", done, s.total)
	}
}

func (s *logrusProgressSink) Done() {
	logrus.Debugf("autotune: batch complete (%d configurations)", s.total)
}
