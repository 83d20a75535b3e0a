package xlog

import (
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/DeRuina/timberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// levelController 日志输出基本控制器
	levelController = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// header 从环境变量中取出日志头, 用于区分进程
func header() string {
	strs := []string{
		os.Getenv("EVENTS_SERVICE"),
		os.Getenv("EVENTS_INSTANCE"),
	}
	strs = slices.DeleteFunc(strs, func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
	return strings.Join(strs, " ")
}

// SetupLogger 设置根logger, logfile 为空时输出到标准输出
func SetupLogger(logfile string) {
	head := header()
	config := zapcore.EncoderConfig{
		CallerKey:     "line",
		LevelKey:      "level",
		MessageKey:    "message",
		TimeKey:       "time",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(t.Format("2006-01-02 15:04:05.999"))
			if head != "" {
				encoder.AppendString(head)
			}
		},
		EncodeLevel: func(level zapcore.Level, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(strings.ToTitle(level.String()))
		},
		EncodeCaller: func(caller zapcore.EntryCaller, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString("[" + caller.TrimmedPath() + "]")
		},
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	encoder := zapcore.NewConsoleEncoder(config)

	var out zapcore.WriteSyncer = os.Stdout
	if logfile != "" {
		out = zapcore.AddSync(fileWriter(logfile))
	}
	core := zapcore.NewCore(encoder, out, levelController)
	// 跳过包级函数和zLogger两层, Error级别输出堆栈
	setRoot(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel)))
}

// SetLogger 使用外部构造的logger, 例如测试中的 zaptest/observer
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	setRoot(logger.WithOptions(zap.AddCallerSkip(2)))
}

// SetLevel 调整输出级别
func SetLevel(l zapcore.Level) {
	levelController.SetLevel(l)
}

// CloseLogger 系统运行结束时, 将日志落盘
func CloseLogger() {
	_ = root().Sync()
}

func fileWriter(path string) io.Writer {
	return &timberjack.Logger{
		Filename:         path,                  // 日志文件路径
		MaxBackups:       7,                     // 最多保留7个备份
		MaxSize:          50,                    // 日志文件最大M
		MaxAge:           7,                     // 最大保存天数
		Compression:      "none",                // 压缩方式, none, gzip, zstd
		LocalTime:        true,                  // 是否使用本地时间
		RotationInterval: 24 * time.Hour,        // 日志轮转时间间隔
		BackupTimeFormat: "2006-01-02-15-04-05", // 日志轮转时间格式
	}
}
