package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl fans entries out to its appenders. A sublogger shares its parent's level and
// appenders, so raising the root level to DEBUG after subloggers were handed out still
// reaches them.
type impl struct {
	name      string
	level     AtomicLevel
	utc       bool
	appenders []Appender
}

func (l *impl) SetLevel(level Level) {
	l.level.Set(level)
}

func (l *impl) GetLevel() Level {
	return l.level.Get()
}

func (l *impl) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return &impl{name: name, level: l.level, utc: l.utc, appenders: l.appenders}
}

func (l *impl) Sync() error {
	var err error
	for _, appender := range l.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (l *impl) enabled(level Level) bool {
	return level >= l.level.Get()
}

// write must be called directly from one of the exported logging methods so that the
// recorded caller is the code that logged.
func (l *impl) write(level Level, msg string, fields []zapcore.Field) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
		Caller:     logCaller(),
	}
	if l.utc {
		entry.Time = entry.Time.UTC()
	}
	for _, appender := range l.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

var errUnpairedKey = errors.New("unpaired log key")

// sweeten turns alternating keys and values into zap fields. A trailing key without a value
// is kept with errUnpairedKey as its value.
func sweeten(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errUnpairedKey))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (l *impl) Debug(args ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, fmt.Sprint(args...), nil)
	}
}

func (l *impl) Debugf(template string, args ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if l.enabled(DEBUG) {
		l.write(DEBUG, msg, sweeten(keysAndValues))
	}
}

func (l *impl) Info(args ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, fmt.Sprint(args...), nil)
	}
}

func (l *impl) Infof(template string, args ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (l *impl) Infow(msg string, keysAndValues ...interface{}) {
	if l.enabled(INFO) {
		l.write(INFO, msg, sweeten(keysAndValues))
	}
}

func (l *impl) Warn(args ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, fmt.Sprint(args...), nil)
	}
}

func (l *impl) Warnf(template string, args ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, fmt.Sprintf(template, args...), nil)
	}
}

func (l *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if l.enabled(WARN) {
		l.write(WARN, msg, sweeten(keysAndValues))
	}
}

func (l *impl) Error(args ...interface{}) {
	if l.enabled(ERROR) {
		l.write(ERROR, fmt.Sprint(args...), nil)
	}
}

func (l *impl) Errorf(template string, args ...interface{}) {
	if l.enabled(ERROR) {
		l.write(ERROR, fmt.Sprintf(template, args...), nil)
	}
}

func (l *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if l.enabled(ERROR) {
		l.write(ERROR, msg, sweeten(keysAndValues))
	}
}

// logCaller skips itself, write and the exported method, e.g. "anchor/processor.go:88".
func logCaller() zapcore.EntryCaller {
	const skip = 3
	pc, file, line, ok := runtime.Caller(skip)
	caller := zapcore.NewEntryCaller(pc, file, line, ok)
	if fn := runtime.FuncForPC(pc); ok && fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
