package progress

import (
	"time"

	"github.com/epget-cli/epget/log"
	"golang.org/x/time/rate"
)

// Sink receives progress of a single transfer.
type Sink interface {
	// Update reports intermediate progress. Implementations may drop updates.
	Update(State)
	// Finish reports the final state. It is never dropped.
	Finish(State)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Update(State) {}
func (Nop) Finish(State) {}

type tee []Sink

// Tee fans progress out to every sink.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

func (t tee) Update(s State) {
	for _, sink := range t {
		sink.Update(s)
	}
}

func (t tee) Finish(s State) {
	for _, sink := range t {
		sink.Finish(s)
	}
}

// Log writes progress to the debug log, at most once per interval.
type Log struct {
	fields   log.Fields
	throttle *rate.Sometimes
}

// NewLog returns a Log sink tagging entries with fields.
func NewLog(fields log.Fields, interval time.Duration) *Log {
	return &Log{fields: fields, throttle: &rate.Sometimes{Interval: interval}}
}

func (l *Log) Update(s State) {
	l.throttle.Do(func() {
		log.With(l.fieldsOf(s)).Debug("transfer progress")
	})
}

func (l *Log) Finish(s State) {
	log.With(l.fieldsOf(s)).Info("transfer finished")
}

func (l *Log) fieldsOf(s State) log.Fields {
	fields := log.Fields{"transferred": s.Transferred}
	for k, v := range l.fields {
		fields[k] = v
	}
	if total, ok := s.Total.Get(); ok {
		fields["total"] = total
	}
	return fields
}
