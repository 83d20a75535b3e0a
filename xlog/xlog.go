package xlog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rootMu     sync.RWMutex
	rootLogger *zLogger
)

// root 取根logger, 没有外部调用Setup时使用默认配置
func root() *zLogger {
	rootMu.RLock()
	l := rootLogger
	rootMu.RUnlock()
	if l != nil {
		return l
	}
	SetupLogger("")
	rootMu.RLock()
	defer rootMu.RUnlock()
	return rootLogger
}

func setRoot(logger *zap.Logger) {
	rootMu.Lock()
	rootLogger = newzLogger(logger)
	rootMu.Unlock()
}

// Debugf 输出格式化的"Debug"级别日志信息；
func Debugf(format string, args ...any) {
	root().Debugf(format, args...)
}

// Debugw 输出定制化的"Debug"级别日志信息；
func Debugw(msg string, keysAndValues ...any) {
	root().Debugw(msg, keysAndValues...)
}

// Debugx 以zapfield方式输出"Debug"级别日志信息；
func Debugx(msg string, fields ...zapcore.Field) {
	root().Debugx(msg, fields...)
}

// Infof 输出格式化的"Info"级别日志信息；
func Infof(format string, args ...any) {
	root().Infof(format, args...)
}

// Infow 输出定制化的"Info"级别日志信息；
func Infow(msg string, keysAndValues ...any) {
	root().Infow(msg, keysAndValues...)
}

// Infox 以zapfield方式输出"Info"级别日志信息；
func Infox(msg string, fields ...zapcore.Field) {
	root().Infox(msg, fields...)
}

// Warnf 输出格式化的"Warn"级别日志信息；
func Warnf(format string, args ...any) {
	root().Warnf(format, args...)
}

// Warnw 输出定制化的"Warn"级别日志信息；
func Warnw(msg string, keysAndValues ...any) {
	root().Warnw(msg, keysAndValues...)
}

// Warnx 以zapfield方式输出"Warn"级别日志信息；
func Warnx(msg string, fields ...zapcore.Field) {
	root().Warnx(msg, fields...)
}

// Errorf 输出格式化的"Error"级别日志信息；
func Errorf(format string, args ...any) {
	root().Errorf(format, args...)
}

// Errorw 输出定制化的"Error"级别日志信息；
func Errorw(msg string, keysAndValues ...any) {
	root().Errorw(msg, keysAndValues...)
}

// Errorx 以zapfield方式输出"Error"级别日志信息；
func Errorx(msg string, fields ...zapcore.Field) {
	root().Errorx(msg, fields...)
}

// Enabled 根logger是否输出该级别
func Enabled(level zapcore.Level) bool {
	return root().Enabled(level)
}

// With 获取一个带固定字段的子logger
func With(fields ...zap.Field) ILogger {
	return root().With(fields...)
}
