package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu         sync.RWMutex
	sugar      *zap.SugaredLogger
	loggerOnce sync.Once
	minLevel   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// initLogger builds the global logger writing to stderr. Use replaces it.
func initLogger() {
	loggerOnce.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = minLevel
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.DisableStacktrace = true

		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}

		mu.Lock()
		if sugar == nil {
			sugar = l.Sugar()
		}
		mu.Unlock()
	})
}

// Use swaps the underlying zap logger, e.g. for an observer in tests.
// SetLevel still applies: entries below the current level are dropped
// even if l would accept them.
func Use(l *zap.Logger) {
	loggerOnce.Do(func() {})
	l = l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return levelCore{Core: c}
	}))
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// levelCore gates a core on minLevel, read at each call.
type levelCore struct {
	zapcore.Core
}

func (c levelCore) Enabled(l zapcore.Level) bool {
	return minLevel.Enabled(l) && c.Core.Enabled(l)
}

func (c levelCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !minLevel.Enabled(ent.Level) {
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c levelCore) With(fields []zapcore.Field) zapcore.Core {
	return levelCore{Core: c.Core.With(fields)}
}

func SetLevel(l Level) {
	initLogger()
	minLevel.SetLevel(toZapLevel(l))
}

// ParseLevel maps a config string to a Level; unknown values give LevelInfo.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func Debug(msg string, kv ...any) {
	logger().Debugw(msg, sanitizeKVs(kv)...)
}

func Info(msg string, kv ...any) {
	logger().Infow(msg, sanitizeKVs(kv)...)
}

func Warn(msg string, kv ...any) {
	logger().Warnw(msg, sanitizeKVs(kv)...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logger().Errorw(msg, sanitizeKVs(extended)...)
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = logger().Sync()
}

func logger() *zap.SugaredLogger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// sanitizeKVs masks values whose key names personal or secret data.
// Expects kv as pairs: key, value, key, value, ...
func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			// Odd trailing value is dropped, as before.
			break
		}
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		val := kv[i+1]
		if isRedactKey(strings.ToLower(key)) {
			val = "[REDACTED]"
		}
		out = append(out, key, val)
	}
	return out
}

func isRedactKey(key string) bool {
	switch {
	case strings.Contains(key, "email"),
		strings.Contains(key, "token"),
		strings.Contains(key, "password"),
		strings.Contains(key, "secret"):
		return true
	default:
		return false
	}
}
