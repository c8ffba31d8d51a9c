package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger fans every line out to the Prints channel and to a zap logger. The
// channel is the bridge's observable log surface; a consumer that stops
// draining it loses lines rather than blocking the producer.
type Logger struct {
	Prints chan string
	zl     *zap.SugaredLogger
}

// Init returns a Logger with a no-op zap backend; lines are only available on
// the Prints channel.
func Init() *Logger {
	return New(zap.NewNop())
}

// New returns a Logger backed by the given zap logger.
func New(zl *zap.Logger) *Logger {
	return &Logger{
		Prints: make(chan string, 100),
		zl:     zl.Sugar(),
	}
}

func (l *Logger) Print(s string) {
	l.zl.Info(s)
	select {
	case l.Prints <- s:
	default:
	}
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Print(fmt.Sprintf(s, as...))
}

func (l *Logger) PrintError(source string, err error) {
	l.zl.Errorw(err.Error(), "source", source)
	select {
	case l.Prints <- fmt.Sprintf("Error(%s) -> %s", source, err.Error()):
	default:
	}
}
