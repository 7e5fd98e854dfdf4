package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the format used for timestamps written by the console appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. A zapcore.Core satisfies this interface, which is how
// the test observer is attached.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender writes tab separated log lines to an `os.File`.
type ConsoleAppender struct {
	out *os.File
}

// NewStderrAppender creates a new appender that outputs to stderr.
func NewStderrAppender() ConsoleAppender {
	return ConsoleAppender{os.Stderr}
}

// Write outputs the log entry to the underlying file.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	toPrint := make([]string, 0, 6)
	toPrint = append(toPrint, entry.Time.Format(DefaultTimeFormatStr))
	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	toPrint = append(toPrint, entry.LoggerName)
	if entry.Caller.Defined {
		toPrint = append(toPrint, callerToString(&entry.Caller))
	}
	toPrint = append(toPrint, entry.Message)

	if len(fields) > 0 {
		encoded, err := encodeFields(fields)
		if err != nil {
			return err
		}
		toPrint = append(toPrint, encoded)
	}

	_, err := fmt.Fprintln(appender.out, strings.Join(toPrint, "\t"))
	return err
}

// Sync flushes the underlying file. Terminals and pipes cannot be synced, which is not an error.
func (appender ConsoleAppender) Sync() error {
	err := appender.out.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// FileAppender writes JSON log lines to a file that is rotated once it grows past MaxSize.
type FileAppender struct {
	*lumberjack.Logger
	encoder zapcore.Encoder
}

// NewFileAppender creates an appender writing to filename. Rotated files are compressed and only
// the most recent backups are kept.
func NewFileAppender(filename string) *FileAppender {
	return &FileAppender{
		Logger: &lumberjack.Logger{
			Filename:   filename,
			MaxSize:    64,
			MaxBackups: 3,
			Compress:   true,
		},
		encoder: zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}),
	}
}

// Write appends the entry as one JSON line.
func (appender *FileAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := appender.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	_, err = appender.Logger.Write(buf.Bytes())
	return err
}

// Sync is a no-op, every Write goes straight to the file.
func (appender *FileAppender) Sync() error {
	return nil
}

// encodeFields uses zap's json encoder which will encode the fields in order. It is called with
// an empty Entry such that only the fields are serialized.
func encodeFields(fields []zapcore.Field) (string, error) {
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return "", err
	}
	defer buf.Free()
	return buf.String(), nil
}

func callerToString(caller *zapcore.EntryCaller) string {
	// The file returned by `runtime.Caller` is a full path. Keep the last directory and file name.
	dir, file := filepath.Split(caller.File)
	return fmt.Sprintf("%s%s:%d", filepath.Base(dir)+"/", file, caller.Line)
}
