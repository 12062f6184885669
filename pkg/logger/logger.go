package logger

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	base *zap.Logger

	serviceName = "risk_core"
)

// Init строит продакшн-логгер. Зовётся один раз из main до старта модулей.
func Init() error {
	l, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}
	base = l
	return nil
}

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

func get() *zap.Logger {
	if base == nil {
		// до Init — пишем хоть куда-то, молча терять логи хуже
		base = zap.Must(zap.NewProduction(zap.AddCallerSkip(1)))
	}
	return base
}

func Info(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	get().With(zap.String("service", serviceName)).Fatal(fmt.Sprintf(format, args...))
}
