package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Charm adapts a charmbracelet logger to Logger.
type Charm struct {
	l *log.Logger
}

// NewCharm creates a Logger writing to w with the given prefix.
// When verbose is set, debug messages are emitted as well.
func NewCharm(w io.Writer, prefix string, verbose bool) *Charm {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Charm{
		l: log.NewWithOptions(w, log.Options{
			Prefix: prefix,
			Level:  level,
		}),
	}
}

func (c *Charm) Debug(msg string, keysAndValues ...interface{}) { c.l.Debug(msg, keysAndValues...) }
func (c *Charm) Info(msg string, keysAndValues ...interface{})  { c.l.Info(msg, keysAndValues...) }
func (c *Charm) Warn(msg string, keysAndValues ...interface{})  { c.l.Warn(msg, keysAndValues...) }
func (c *Charm) Error(msg string, keysAndValues ...interface{}) { c.l.Error(msg, keysAndValues...) }
