package namechain

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

const (
	logName = "console"
)

var (
	fileHooksMu sync.Mutex
	fileHooks   = make(map[string]logrus.Hook) // 按日志文件与级别缓存的文件钩子
)

// SetLog 为每一个实例创建一个log文件，记录日志信息
func SetLog(logDir, instanceId string, logLevel logrus.Level) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志目录失败: %w", err)
	}

	filename := filepath.Join(logDir, fmt.Sprintf("%s.log", logName))
	if instanceId != "" {
		filename = filepath.Join(logDir, fmt.Sprintf("%s_%s.log", logName, instanceId))
	}
	rotateFileHook, err := fileHook(filename, logLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(logLevel)
	logrus.SetOutput(colorable.NewColorableStdout())
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC822,
	})

	// 重复调用只保留当前的文件钩子
	hooks := make(logrus.LevelHooks)
	hooks.Add(rotateFileHook)
	logrus.StandardLogger().ReplaceHooks(hooks)
	return nil
}

// fileHook 返回写入 filename 的文件钩子，同一文件与级别复用同一个钩子
func fileHook(filename string, logLevel logrus.Level) (logrus.Hook, error) {
	fileHooksMu.Lock()
	defer fileHooksMu.Unlock()

	key := fmt.Sprintf("%s|%s", filename, logLevel)
	if hook, ok := fileHooks[key]; ok {
		return hook, nil
	}

	// logrus 的回调钩子
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   filename,
		MaxSize:    50, // 文件最大50M
		MaxBackups: 3,
		MaxAge:     28, // 存储28天
		Level:      logLevel,
		Formatter: &logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化文件回调钩子失败: %w", err)
	}
	fileHooks[key] = hook
	return hook, nil
}

// btclogAdapter 把 btclog.Logger 的调用转发到 logrus
type btclogAdapter struct {
	entry *logrus.Entry
}

// NewBtclogAdapter 返回写入 entry 的 btclog.Logger，用于 txscript.UseLogger
func NewBtclogAdapter(entry *logrus.Entry) btclog.Logger {
	return &btclogAdapter{entry: entry}
}

func (a *btclogAdapter) Tracef(format string, params ...interface{}) {
	a.entry.Tracef(format, params...)
}

func (a *btclogAdapter) Debugf(format string, params ...interface{}) {
	a.entry.Debugf(format, params...)
}

func (a *btclogAdapter) Infof(format string, params ...interface{}) {
	a.entry.Infof(format, params...)
}

func (a *btclogAdapter) Warnf(format string, params ...interface{}) {
	a.entry.Warnf(format, params...)
}

func (a *btclogAdapter) Errorf(format string, params ...interface{}) {
	a.entry.Errorf(format, params...)
}

// Criticalf 映射到 logrus 的 Error 级别，不会退出进程
func (a *btclogAdapter) Criticalf(format string, params ...interface{}) {
	a.entry.Errorf(format, params...)
}

func (a *btclogAdapter) Trace(v ...interface{}) {
	a.entry.Trace(v...)
}

func (a *btclogAdapter) Debug(v ...interface{}) {
	a.entry.Debug(v...)
}

func (a *btclogAdapter) Info(v ...interface{}) {
	a.entry.Info(v...)
}

func (a *btclogAdapter) Warn(v ...interface{}) {
	a.entry.Warn(v...)
}

func (a *btclogAdapter) Error(v ...interface{}) {
	a.entry.Error(v...)
}

func (a *btclogAdapter) Critical(v ...interface{}) {
	a.entry.Error(v...)
}

// Level 返回与 logrus 当前级别对应的 btclog 级别
func (a *btclogAdapter) Level() btclog.Level {
	switch a.entry.Logger.GetLevel() {
	case logrus.TraceLevel:
		return btclog.LevelTrace
	case logrus.DebugLevel:
		return btclog.LevelDebug
	case logrus.InfoLevel:
		return btclog.LevelInfo
	case logrus.WarnLevel:
		return btclog.LevelWarn
	case logrus.ErrorLevel:
		return btclog.LevelError
	case logrus.FatalLevel, logrus.PanicLevel:
		return btclog.LevelCritical
	}
	return btclog.LevelOff
}

// SetLevel 修改底层 logrus.Logger 的级别
func (a *btclogAdapter) SetLevel(level btclog.Level) {
	switch level {
	case btclog.LevelTrace:
		a.entry.Logger.SetLevel(logrus.TraceLevel)
	case btclog.LevelDebug:
		a.entry.Logger.SetLevel(logrus.DebugLevel)
	case btclog.LevelInfo:
		a.entry.Logger.SetLevel(logrus.InfoLevel)
	case btclog.LevelWarn:
		a.entry.Logger.SetLevel(logrus.WarnLevel)
	case btclog.LevelError:
		a.entry.Logger.SetLevel(logrus.ErrorLevel)
	default:
		a.entry.Logger.SetLevel(logrus.FatalLevel)
	}
}
