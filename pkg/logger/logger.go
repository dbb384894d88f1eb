package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel is used to determine which log severities should actually log
type LogLevel int

// LogFormat is used to set the how the log messages should be displayed
type LogFormat int

const (
	// NOTSET will log everything
	NOTSET LogLevel = 0
	// DEBUG will enable these logs and higer
	DEBUG LogLevel = 10
	// INFO will enable these logs and higer
	INFO LogLevel = 20
	// WARNING will enable these logs and higer
	WARNING LogLevel = 30
	// ERROR will enable these logs and higer
	ERROR LogLevel = 40
	// CRITICAL will enable these logs and higer
	CRITICAL LogLevel = 50
)

const (
	// JSON displays the logs as JSON dicts
	JSON LogFormat = 0
	// HUMAN displays the logs in a way that's nice for humans to read
	HUMAN LogFormat = 1
)

// String renders a LogLevel as its string value
func (l LogLevel) String() string {
	switch l {
	case NOTSET:
		return "NOTSET"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "INVALID"
	}
}

func (l LogLevel) zerologLevel() zerolog.Level {
	switch l {
	case NOTSET:
		return zerolog.TraceLevel
	case DEBUG:
		return zerolog.DebugLevel
	case WARNING:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	case CRITICAL:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

var (
	mutex            sync.RWMutex
	currentLogLevel            = INFO
	currentLogFormat           = HUMAN
	output           io.Writer = os.Stderr
	log                        = newLogger(output, currentLogFormat)
)

func newLogger(w io.Writer, format LogFormat) zerolog.Logger {
	if format == HUMAN {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			PartsOrder: []string{zerolog.LevelFieldName, zerolog.MessageFieldName},
			FormatLevel: func(i any) string {
				return fmt.Sprintf("[%s]", severity(fmt.Sprint(i)))
			},
		}
	}

	return zerolog.New(w).With().Timestamp().Logger()
}

// severity maps zerolog level names back onto the names used by LogLevel
func severity(zerologLevel string) string {
	switch zerologLevel {
	case zerolog.LevelWarnValue:
		return WARNING.String()
	case zerolog.LevelFatalValue:
		return CRITICAL.String()
	default:
		return strings.ToUpper(zerologLevel)
	}
}

// SetOutput changes where logs are written (stderr by default)
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()

	output = w
	log = newLogger(output, currentLogFormat)
}

// SetLoggerFormat adjusts the format used when writing log entries
func SetLoggerFormat(logFormat LogFormat) error {
	mutex.Lock()
	defer mutex.Unlock()

	switch logFormat {
	case JSON, HUMAN:
		currentLogFormat = logFormat
	default:
		return fmt.Errorf("invalid log format: log_format=%v", logFormat)
	}

	log = newLogger(output, currentLogFormat)
	return nil
}

// ParseLoggerFormat takes the string version of a format and returns the LogFormat
func ParseLoggerFormat(formatName string) (LogFormat, error) {
	switch strings.ToUpper(formatName) {
	case "JSON":
		return JSON, nil
	case "HUMAN", "":
		return HUMAN, nil
	default:
		return HUMAN, fmt.Errorf("invalid log format: log_format=%q", formatName)
	}
}

// SetLoggerLevel takes the string version of the name and sets the current level
func SetLoggerLevel(levelName string) error {
	mutex.Lock()
	defer mutex.Unlock()

	switch levelName {
	case "DEBUG":
		currentLogLevel = DEBUG
	case "INFO":
		currentLogLevel = INFO
	case "WARNING":
		currentLogLevel = WARNING
	case "ERROR":
		currentLogLevel = ERROR
	case "CRITICAL":
		currentLogLevel = CRITICAL
	default:
		return fmt.Errorf("invalid log level: level=%q", levelName)
	}

	return nil
}

// GetLoggerLevel returns the current logger level
func GetLoggerLevel() LogLevel {
	mutex.RLock()
	defer mutex.RUnlock()

	return currentLogLevel
}

func emit(level LogLevel, msg string) {
	mutex.RLock()
	defer mutex.RUnlock()

	if currentLogLevel > level {
		return
	}

	log.WithLevel(level.zerologLevel()).Msg(msg)
}

// Debug emits an DEBUG level log
func Debug(msg string, a ...any) {
	emit(DEBUG, fmt.Sprintf(msg, a...))
}

// Info emits an INFO level log
func Info(msg string, a ...any) {
	emit(INFO, fmt.Sprintf(msg, a...))
}

// Warning emits an WARNING level log
func Warning(msg string, a ...any) {
	emit(WARNING, fmt.Sprintf(msg, a...))
}

// Error emits an ERROR level log
func Error(msg string, a ...any) {
	emit(ERROR, fmt.Errorf(msg, a...).Error())
}

// Fatal emits an CRITICAL level log and stops the program
func Fatal(msg string, a ...any) {
	emit(CRITICAL, fmt.Errorf(msg, a...).Error())
	os.Exit(1)
}
