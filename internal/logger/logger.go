package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志选项
type Options struct {
	Debug       bool     // 调试级别，并在错误日志中输出堆栈
	Verbose     bool     // 调试级别，用于显示翻译片段预览
	OutputPaths []string // 默认为 stderr
}

// New 按选项创建日志记录器
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	if opts.Debug || opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = !opts.Debug
	// 逐段预览日志量大，关闭采样以免丢失
	config.Sampling = nil

	if len(opts.OutputPaths) > 0 {
		config.OutputPaths = opts.OutputPaths
	}

	return config.Build()
}

// NewLogger 创建一个新的日志记录器
func NewLogger(debug bool) *zap.Logger {
	logger, err := New(Options{Debug: debug})
	if err != nil {
		panic("初始化日志系统失败: " + err.Error())
	}
	return logger
}
