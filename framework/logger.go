package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the module. *log.Logger
// satisfies it.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (n nullLogger) Printf(message string, args ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

type writerLogger struct {
	dest   io.Writer
	prefix string
	lock   sync.Mutex
}

// NewWriterLogger returns a Logger that writes each message on its own line, with a
// timestamp in the same format used by CapturedOutput.Dump.
func NewWriterLogger(dest io.Writer, prefix string) Logger {
	return &writerLogger{dest: dest, prefix: prefix}
}

func (l *writerLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.dest, "%s[%s] %s\n", l.prefix, time.Now().Format(timestampFormat), fmt.Sprintf(message, args...))
}

type CapturedMessage struct {
	Time    time.Time
	Message string
}

type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages in memory. The zero value is ready to use.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.lock.Lock()
	l.output = append(l.output, CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
	l.lock.Unlock()
}

func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n",
			prefix,
			m.Time.Format(timestampFormat),
			m.Message,
		)
	}
}
