package cmd

import (
	"log/slog"
	"os"
	"sync"
)

// 全局 logger，只会初始化一次
var (
	globalLogger *slog.Logger
	logLevel     = new(slog.LevelVar)
	once         sync.Once
)

// Init 初始化全局 slog Logger
// 文本格式输出到 stderr，如果在 systemd 下自动去掉时间戳
func Init() *slog.Logger {
	once.Do(func() {
		opts := &slog.HandlerOptions{
			Level: logLevel,
		}
		if isRunningUnderSystemd() {
			opts.ReplaceAttr = removeTimeAttr
		}

		globalLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		// 设置为全局默认 logger
		slog.SetDefault(globalLogger)
	})

	return globalLogger
}

// SetLevel changes the level of the global logger after Init.
func SetLevel(level slog.Level) {
	logLevel.Set(level)
}

// 判断是否在 systemd 下运行
func isRunningUnderSystemd() bool {
	_, ok := os.LookupEnv("INVOCATION_ID")
	return ok
}

// removeTimeAttr 用于删除时间字段
func removeTimeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.Attr{} // 删除时间字段
	}
	return a
}

func init() {
	Init()
}
