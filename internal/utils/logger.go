package utils

import (
	"fmt"
	"log"
	"strings"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	CurrentLevel   LogLevel = LevelWarn
	ShowRaylibInfo bool
	ShowDebugUI    bool
	NoColor        bool
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel maps a -log-level flag value to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

func logMessage(level LogLevel, format string, v ...interface{}) {
	if level < CurrentLevel {
		return
	}

	const (
		colorReset  = "\033[0m"
		colorCyan   = "\033[36m"
		colorBlue   = "\033[34m"
		colorYellow = "\033[33m"
		colorRed    = "\033[31m"
	)

	prefix := "[" + level.String() + "] "
	if !NoColor {
		var colorCode string
		switch level {
		case LevelDebug:
			colorCode = colorCyan
		case LevelInfo:
			colorCode = colorBlue
		case LevelWarn:
			colorCode = colorYellow
		case LevelError:
			colorCode = colorRed
		}
		prefix = fmt.Sprintf("%s[%s]%s ", colorCode, level.String(), colorReset)
	}
	log.Printf(prefix+format, v...)
}

func Info(format string, v ...interface{})  { logMessage(LevelInfo, format, v...) }
func Debug(format string, v ...interface{}) { logMessage(LevelDebug, format, v...) }
func Warn(format string, v ...interface{})  { logMessage(LevelWarn, format, v...) }
func Error(format string, v ...interface{}) { logMessage(LevelError, format, v...) }

// RaylibLogCallback forwards raylib trace output into the levelled logger.
func RaylibLogCallback(level int, text string) {
	formatted := "[RAYLIB] " + text
	if !NoColor {
		formatted = "\033[35m[RAYLIB]\033[0m " + text
	}
	switch level {
	case 1, 2: // LOG_TRACE, LOG_DEBUG
		Debug("%s", formatted)
	case 3: // LOG_INFO
		if ShowRaylibInfo {
			logMessage(CurrentLevel, "%s", formatted)
		} else {
			Info("%s", formatted)
		}
	case 4: // LOG_WARNING
		Warn("%s", formatted)
	case 5, 6: // LOG_ERROR, LOG_FATAL
		Error("%s", formatted)
	}
}
