package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	slogmulti "github.com/samber/slog-multi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	name = "github.com/hyperledger-labs/yui-bridge-relayer"

	fileOutputPrefix = "file:"
)

type RelayLogger struct {
	*slog.Logger
}

var relayLogger *RelayLogger

// InitLogger initializes the global logger.
// output is one of "stdout", "stderr" or "file:<path>". File output is rotated.
func InitLogger(logLevel, format, output string, enableTelemetry bool) error {
	switch {
	case output == "stdout":
		return InitLoggerWithWriter(logLevel, format, os.Stdout, enableTelemetry)
	case output == "stderr":
		return InitLoggerWithWriter(logLevel, format, os.Stderr, enableTelemetry)
	case strings.HasPrefix(output, fileOutputPrefix):
		path := strings.TrimPrefix(output, fileOutputPrefix)
		if path == "" {
			return errors.New("empty log file path")
		}
		return InitLoggerWithWriter(logLevel, format, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}, enableTelemetry)
	default:
		return errors.New("invalid log output")
	}
}

func InitLoggerWithWriter(logLevel, format string, writer io.Writer, enableTelemetry bool) error {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return errors.Wrapf(err, "invalid log level: %s", logLevel)
	}
	handlerOpts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: true,
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(writer, handlerOpts)
	default:
		return errors.New("invalid log format")
	}

	if enableTelemetry {
		handler = slogmulti.Fanout(handler, otelslog.NewHandler(name))
	}

	relayLogger = &RelayLogger{slog.New(handler)}
	return nil
}

// GetLogger returns the global logger. A discarding logger is returned before InitLogger is called.
func GetLogger() *RelayLogger {
	if relayLogger == nil {
		return &RelayLogger{slog.New(slog.NewTextHandler(io.Discard, nil))}
	}
	return relayLogger
}

// log emits a record whose source is the caller `skipCallDepth` frames above the caller of log.
func (rl *RelayLogger) log(ctx context.Context, logLevel slog.Level, skipCallDepth int, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !rl.Logger.Enabled(ctx, logLevel) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(2+skipCallDepth, pcs[:])

	r := slog.NewRecord(time.Now(), logLevel, msg, pcs[0])
	r.Add(args...)
	_ = rl.Logger.Handler().Handle(ctx, r)
}

func errorArgs(err error, otherArgs []any) []any {
	if err == nil {
		return otherArgs
	}
	err = errors.WithStackDepth(err, 2)
	return append([]any{"error", err, "stack", fmt.Sprintf("%+v", err)}, otherArgs...)
}

// Error logs err with its stack trace
func (rl *RelayLogger) Error(msg string, err error, otherArgs ...any) {
	rl.log(context.Background(), slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
}

func (rl *RelayLogger) ErrorContext(ctx context.Context, msg string, err error, otherArgs ...any) {
	rl.log(ctx, slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
}

// Fatal logs err and terminates the process
func (rl *RelayLogger) Fatal(msg string, err error, otherArgs ...any) {
	rl.log(context.Background(), slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
	os.Exit(1)
}

func (rl *RelayLogger) FatalContext(ctx context.Context, msg string, err error, otherArgs ...any) {
	rl.log(ctx, slog.LevelError, 1, msg, errorArgs(err, otherArgs)...)
	os.Exit(1)
}

func (rl *RelayLogger) TimeTrack(start time.Time, name string, otherArgs ...any) {
	elapsed := time.Since(start)
	allArgs := append([]any{"name", name, "elapsed", elapsed.Nanoseconds()}, otherArgs...)
	rl.log(context.Background(), slog.LevelInfo, 1, "time track", allArgs...)
}

func (rl *RelayLogger) TimeTrackContext(ctx context.Context, start time.Time, name string, otherArgs ...any) {
	elapsed := time.Since(start)
	allArgs := append([]any{"name", name, "elapsed", elapsed.Nanoseconds()}, otherArgs...)
	rl.log(ctx, slog.LevelInfo, 1, "time track", allArgs...)
}

func (rl *RelayLogger) WithChain(chainID string) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"chain_id", chainID,
		),
	}
}

func (rl *RelayLogger) WithChainPair(
	srcChainID string,
	dstChainID string,
) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"src_chain_id", srcChainID,
			"dst_chain_id", dstChainID,
		),
	}
}

func (rl *RelayLogger) WithBridge(bridgeName string) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"bridge", bridgeName,
		),
	}
}

func (rl *RelayLogger) WithParachain(paraID uint32) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"para_id", paraID,
		),
	}
}

func (rl *RelayLogger) WithModule(moduleName string) *RelayLogger {
	return &RelayLogger{
		rl.Logger.With(
			"module", moduleName,
		),
	}
}
