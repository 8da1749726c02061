package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant             = "debug"
	logLevelInfoStringConstant              = "info"
	logLevelWarnStringConstant              = "warn"
	logLevelErrorStringConstant             = "error"
	logFormatStructuredStringConstant       = "structured"
	logFormatConsoleStringConstant          = "console"
	unsupportedLogLevelTemplateConstant     = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant    = "unsupported log format %q"
	consoleMessageEncoderMessageKeyConstant = "message"
)

// LogLevel names a supported logging verbosity.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat names a supported log output encoding.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// UnsupportedLogLevelError indicates an unrecognized log level value.
type UnsupportedLogLevelError struct {
	Level LogLevel
}

// Error implements the error interface.
func (levelError UnsupportedLogLevelError) Error() string {
	return fmt.Sprintf(unsupportedLogLevelTemplateConstant, string(levelError.Level))
}

// UnsupportedLogFormatError indicates an unrecognized log format value.
type UnsupportedLogFormatError struct {
	Format LogFormat
}

// Error implements the error interface.
func (formatError UnsupportedLogFormatError) Error() string {
	return fmt.Sprintf(unsupportedLogFormatTemplateConstant, string(formatError.Format))
}

// LoggerOutputs bundles the diagnostic logger with a console-facing logger.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers for supported level and format combinations.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLoggerOutputs builds loggers writing to standard error for the requested level and format.
func (factory *LoggerFactory) CreateLoggerOutputs(requestedLevel LogLevel, requestedFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := resolveZapLevel(requestedLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	standardErrorSink := zapcore.Lock(zapcore.AddSync(os.Stderr))

	switch normalizeLogFormat(requestedFormat) {
	case LogFormatStructured:
		encoderConfiguration := zap.NewProductionEncoderConfig()
		diagnosticCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfiguration), standardErrorSink, zapLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.NewNop(),
		}, nil
	case LogFormatConsole:
		diagnosticEncoderConfiguration := zap.NewDevelopmentEncoderConfig()
		diagnosticCore := zapcore.NewCore(zapcore.NewConsoleEncoder(diagnosticEncoderConfiguration), standardErrorSink, zapLevel)

		consoleEncoderConfiguration := zapcore.EncoderConfig{
			MessageKey:  consoleMessageEncoderMessageKeyConstant,
			LineEnding:  zapcore.DefaultLineEnding,
			EncodeLevel: zapcore.LowercaseLevelEncoder,
		}
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration), standardErrorSink, zapLevel)

		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.New(consoleCore),
		}, nil
	default:
		return LoggerOutputs{}, UnsupportedLogFormatError{Format: requestedFormat}
	}
}

func resolveZapLevel(requestedLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(requestedLevel)))) {
	case LogLevelDebug:
		return zap.DebugLevel, nil
	case LogLevelInfo:
		return zap.InfoLevel, nil
	case LogLevelWarn:
		return zap.WarnLevel, nil
	case LogLevelError:
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, UnsupportedLogLevelError{Level: requestedLevel}
	}
}

func normalizeLogFormat(requestedFormat LogFormat) LogFormat {
	return LogFormat(strings.ToLower(strings.TrimSpace(string(requestedFormat))))
}
