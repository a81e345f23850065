package xlog

import (
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var _ fxevent.Logger = (*FxXLogger)(nil)

type FxXLogger struct {
	logger XLogger
}

func moduleField(name string) []zap.Field {
	if name == "" {
		return nil
	}
	return []zap.Field{zap.String("module", name)}
}

func (l *FxXLogger) hook(name, fn, caller string, in int64, err error) {
	fields := []zap.Field{
		zap.String("function", fn),
		zap.String("caller", caller),
	}
	if in >= 0 {
		fields = append(fields, zap.Int64("in", in))
	}
	if err != nil {
		l.logger.Error(err, name+" failed", fields...)
		return
	}
	l.logger.Debug(name, fields...)
}

func (l *FxXLogger) types(action string, types []string, module string, fields ...zap.Field) {
	for _, rtype := range types {
		fs := append([]zap.Field{zap.String("rtype", rtype)}, fields...)
		l.logger.Debug(action, append(fs, moduleField(module)...)...)
	}
}

func (l *FxXLogger) LogEvent(event fxevent.Event) {
	if l == nil || l.logger == nil {
		return
	}

	switch e := event.(type) {
	case *fxevent.OnStartExecuting:
		l.hook("HOOK OnStart", e.FunctionName, e.CallerName, -1, nil)
	case *fxevent.OnStartExecuted:
		l.hook("HOOK OnStart executed", e.FunctionName, e.CallerName, int64(e.Runtime), e.Err)
	case *fxevent.OnStopExecuting:
		l.hook("HOOK OnStop", e.FunctionName, e.CallerName, -1, nil)
	case *fxevent.OnStopExecuted:
		l.hook("HOOK OnStop executed", e.FunctionName, e.CallerName, int64(e.Runtime), e.Err)
	case *fxevent.Supplied:
		if e.Err != nil {
			l.logger.Error(e.Err, "SUPPLY", zap.String("type", e.TypeName), zap.Strings("stacktrace", e.StackTrace))
			return
		}
		l.logger.Debug("SUPPLY", append([]zap.Field{zap.String("type", e.TypeName)}, moduleField(e.ModuleName)...)...)
	case *fxevent.Provided:
		l.types("PROVIDE", e.OutputTypeNames, e.ModuleName,
			zap.Bool("private", e.Private),
			zap.String("constructor", e.ConstructorName),
		)
		if e.Err != nil {
			l.logger.Error(e.Err, "PROVIDE failed", zap.Strings("stacktrace", e.StackTrace))
		}
	case *fxevent.Replaced:
		l.types("REPLACE", e.OutputTypeNames, e.ModuleName)
		if e.Err != nil {
			l.logger.Error(e.Err, "REPLACE failed", zap.Strings("stacktrace", e.StackTrace))
		}
	case *fxevent.Decorated:
		l.types("DECORATE", e.OutputTypeNames, e.ModuleName, zap.String("decorator", e.DecoratorName))
		if e.Err != nil {
			l.logger.Error(e.Err, "DECORATE failed", zap.Strings("stacktrace", e.StackTrace))
		}
	case *fxevent.Invoking:
		l.logger.Debug("INVOKING", append([]zap.Field{zap.String("function", e.FunctionName)}, moduleField(e.ModuleName)...)...)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error(e.Err, "INVOKE failed",
				zap.String("function", e.FunctionName),
				zap.String("trace", e.Trace),
			)
		}
	case *fxevent.Stopping:
		l.logger.Info("STOPPING", zap.String("signal", e.Signal.String()))
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error(e.Err, "STOP failed")
		}
	case *fxevent.RollingBack:
		l.logger.Warn("START failed, rolling back", zap.Error(e.StartErr))
	case *fxevent.RolledBack:
		if e.Err != nil {
			l.logger.Error(e.Err, "ROLLBACK failed")
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error(e.Err, "START failed")
		} else {
			l.logger.Debug("RUNNING")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			l.logger.Error(e.Err, "LOGGER initialize failed")
		} else {
			l.logger.Debug("LOGGER initialized", zap.String("constructor", e.ConstructorName))
		}
	}
}

func NewFxXLogger(logger XLogger) *FxXLogger {
	return &FxXLogger{logger: componentLogger(logger, "Fx")}
}
