package executor

import (
	"sync"

	"github.com/vvka-141/pgdispatch/pkg/pgdispatch"
)

// Sink receives the terminal outcome of one request.
// Exactly one of result and err is meaningful: err != nil means failure.
type Sink interface {
	Complete(result *pgdispatch.Result, err error)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(result *pgdispatch.Result, err error)

// Complete calls f(result, err).
func (f SinkFunc) Complete(result *pgdispatch.Result, err error) {
	f(result, err)
}

// onceSink forwards at most one completion.
type onceSink struct {
	once sync.Once
	sink Sink
}

func once(sink Sink) *onceSink {
	return &onceSink{sink: sink}
}

func (s *onceSink) Complete(result *pgdispatch.Result, err error) {
	s.once.Do(func() {
		if s.sink != nil {
			s.sink.Complete(result, err)
		}
	})
}
