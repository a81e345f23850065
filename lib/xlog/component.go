package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func componentLogger(logger XLogger, name string) *xLogger {
	parent, ok := logger.(*xLogger)
	if !ok || parent == nil {
		panic("[XLogger] parent logger is not the xlogger")
	}
	l := &xLogger{
		ctxFields:           parent.ctxFields,
		dynamicLevelEnabler: parent.dynamicLevelEnabler,
		writer:              parent.writer,
		encoder:             parent.encoder,
	}
	l.logger.Store(parent.
		zap().
		Named(name).
		WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			if core == nil {
				panic("[XLogger] core is nil")
			}
			cc, ok := core.(xLogCore)
			if !ok {
				panic("[XLogger] core is not XLogCore")
			}
			var err error
			if mc, ok := cc.(xLogMultiCore); ok && mc != nil {
				if cc, err = WrapCores(mc, componentCoreEncoderCfg); err != nil {
					panic(err)
				}
			} else if cc, err = WrapCore(cc, componentCoreEncoderCfg); err != nil {
				panic(err)
			}
			return cc
		})),
	)
	return l
}

// NewComponentLogger returns the zap logger used by the containers and
// the bench runner. It shares the level of the parent.
func NewComponentLogger(logger XLogger, name string) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return componentLogger(logger, name).zap()
}

type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	return &AntsXLogger{
		logger: componentLogger(logger, "Ants"),
	}
}
