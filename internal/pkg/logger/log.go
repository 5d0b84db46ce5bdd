package logger

import (
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Messages carries encoded JSON log entries to the console printer.
var Messages = make(chan []byte, 256)

const (
	ErrorLvl    = 0
	WarningLvl  = 1
	InfoLvl     = 2
	ActionLvl   = 3
	GestureLvl  = 4
	UnmappedLvl = 5
	AnalogLvl   = 6

	DebugLvl = 378
)

var (
	Error    = zap.Int("level", ErrorLvl)
	Warning  = zap.Int("level", WarningLvl)
	Info     = zap.Int("level", InfoLvl)
	Action   = zap.Int("level", ActionLvl)
	Gesture  = zap.Int("level", GestureLvl)
	Unmapped = zap.Int("level", UnmappedLvl)
	Analog   = zap.Int("level", AnalogLvl)

	Debug = zap.Int("level", DebugLvl)
)

// dropped counts entries of all loggers lost on a full channel.
var dropped atomic.Uint64

// Dropped returns the number of log entries dropped since start.
func Dropped() uint64 {
	return dropped.Load()
}

type chanWriter struct {
	sync.Mutex
	out chan<- []byte
}

// Write never blocks the caller, entries are dropped when nobody drains the channel.
func (w *chanWriter) Write(p []byte) (n int, err error) {
	w.Lock()
	var newSlice = make([]byte, len(p))
	copy(newSlice, p)
	select {
	case w.out <- newSlice:
	default:
		dropped.Inc()
	}
	w.Unlock()
	return len(p), nil
}

func (w *chanWriter) Sync() error {
	return nil
}

func newLogger(out chan<- []byte) *zap.Logger {
	writer := &chanWriter{out: out}
	cfg := zap.NewProductionEncoderConfig()
	cfg.SkipLineEnding = true
	cfg.EncodeTime = zapcore.EpochNanosTimeEncoder
	cfg.LevelKey = ""
	encoder := zapcore.NewJSONEncoder(cfg)

	return zap.New(
		zapcore.NewCore(encoder, zapcore.Lock(writer), zap.DebugLevel),
		zap.AddCaller(),
	)
}

func GetLogger() *zap.Logger {
	return newLogger(Messages)
}
