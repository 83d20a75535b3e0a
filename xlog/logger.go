package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ ILogger = &zLogger{}

// ILogger 库内使用的日志接口
type ILogger interface {
	Debugf(string, ...any)
	Debugw(string, ...any)
	Debugx(string, ...zapcore.Field)

	Infof(string, ...any)
	Infow(string, ...any)
	Infox(string, ...zapcore.Field)

	Warnf(string, ...any)
	Warnw(string, ...any)
	Warnx(string, ...zapcore.Field)

	Errorf(string, ...any)
	Errorw(string, ...any)
	Errorx(string, ...zapcore.Field)

	Enabled(level zapcore.Level) bool
	With(fields ...zap.Field) ILogger
}

type zLogger struct {
	logger  *zap.Logger
	slogger *zap.SugaredLogger
}

func newzLogger(logger *zap.Logger) *zLogger {
	return &zLogger{
		logger:  logger,
		slogger: logger.Sugar(),
	}
}

// Debugf 输出格式化的"Debug"级别日志信息；
func (z *zLogger) Debugf(template string, args ...any) {
	z.slogger.Debugf(template, args...)
}

// Debugw 输出定制化的"Debug"级别日志信息；
func (z *zLogger) Debugw(msg string, keysAndValues ...any) {
	z.slogger.Debugw(msg, keysAndValues...)
}

// Debugx 以zapfield方式输出"Debug"级别日志信息；
func (z *zLogger) Debugx(msg string, fields ...zapcore.Field) {
	z.logger.Debug(msg, fields...)
}

// Infof 输出格式化的"Info"级别日志信息；
func (z *zLogger) Infof(template string, args ...any) {
	z.slogger.Infof(template, args...)
}

// Infow 输出定制化的"Info"级别日志信息；
func (z *zLogger) Infow(msg string, keysAndValues ...any) {
	z.slogger.Infow(msg, keysAndValues...)
}

// Infox 以zapfield方式输出"Info"级别日志信息；
func (z *zLogger) Infox(msg string, fields ...zapcore.Field) {
	z.logger.Info(msg, fields...)
}

// Warnf 输出格式化的"Warn"级别日志信息；
func (z *zLogger) Warnf(template string, args ...any) {
	z.slogger.Warnf(template, args...)
}

// Warnw 输出定制化的"Warn"级别日志信息；
func (z *zLogger) Warnw(msg string, keysAndValues ...any) {
	z.slogger.Warnw(msg, keysAndValues...)
}

// Warnx 以zapfield方式输出"Warn"级别日志信息；
func (z *zLogger) Warnx(msg string, fields ...zapcore.Field) {
	z.logger.Warn(msg, fields...)
}

// Errorf 输出格式化的"Error"级别日志信息；
func (z *zLogger) Errorf(template string, args ...any) {
	z.slogger.Errorf(template, args...)
}

// Errorw 输出定制化的"Error"级别日志信息；
func (z *zLogger) Errorw(msg string, keysAndValues ...any) {
	z.slogger.Errorw(msg, keysAndValues...)
}

// Errorx 以zapfield方式输出"Error"级别日志信息；
func (z *zLogger) Errorx(msg string, fields ...zapcore.Field) {
	z.logger.Error(msg, fields...)
}

func (z *zLogger) Enabled(level zapcore.Level) bool {
	return z.logger.Core().Enabled(level)
}

// With 获取一个带固定字段的子logger
func (z *zLogger) With(fields ...zap.Field) ILogger {
	return newzLogger(z.logger.With(fields...))
}

// Sync 将缓冲内容刷写到输出端
func (z *zLogger) Sync() error {
	return z.logger.Sync()
}
