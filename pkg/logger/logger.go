package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with convenience methods
type Logger struct {
	*slog.Logger
}

// LogLevel represents logging levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	// Default logger instance
	defaultLogger *Logger
	// Current log level
	currentLevel = LevelInfo
)

// Init initializes the global logger with specified level
func Init(level string) {
	switch strings.ToLower(level) {
	case "debug":
		currentLevel = LevelDebug
	case "info", "":
		currentLevel = LevelInfo
	case "warn", "warning":
		currentLevel = LevelWarn
	case "error":
		currentLevel = LevelError
	default:
		currentLevel = LevelInfo
	}

	var slogLevel slog.Level
	switch currentLevel {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level:     slogLevel,
		AddSource: false, // Clean logs without source info
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Clean timestamp format
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format("15:04:05")),
				}
			}
			// Clean level names
			if a.Key == slog.LevelKey {
				level := a.Value.Any().(slog.Level)
				switch level {
				case slog.LevelDebug:
					a.Value = slog.StringValue("DEBUG")
				case slog.LevelInfo:
					a.Value = slog.StringValue("INFO ")
				case slog.LevelWarn:
					a.Value = slog.StringValue("WARN ")
				case slog.LevelError:
					a.Value = slog.StringValue("ERROR")
				}
			}
			return a
		},
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	defaultLogger = &Logger{slog.New(handler)}
}

// Get returns the default logger instance
func Get() *Logger {
	if defaultLogger == nil {
		Init(os.Getenv("LOG_LEVEL"))
	}
	return defaultLogger
}

// Convenience methods for common logging patterns

func Debug(msg string, args ...any) {
	if currentLevel <= LevelDebug {
		Get().Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if currentLevel <= LevelInfo {
		Get().Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if currentLevel <= LevelWarn {
		Get().Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if currentLevel <= LevelError {
		Get().Error(msg, args...)
	}
}

// Startup logging for key initialization steps
func Startup(step, message string, args ...any) {
	if currentLevel <= LevelInfo {
		// \033[36m is Cyan color for the [+] prefix
		fmt.Printf("\033[36m[+]\033[0m %s\n", message)
	}
	if currentLevel <= LevelDebug {
		Debug("Startup step", append([]any{"step", step, "message", message}, args...)...)
	}
}

// isPollingPath reports whether path is one clients poll in a tight
// loop while a background stage or export runs. These are logged only
// at DEBUG to keep INFO output readable.
func isPollingPath(method, path string) bool {
	if path == "/health" {
		return true
	}
	if method != "GET" {
		return false
	}
	// GET /api/v1/jobs/{id} and GET .../export-jobs/{eid} status polls.
	if strings.HasPrefix(path, "/api/v1/jobs/") && !strings.HasSuffix(path, "/audio") && !strings.HasSuffix(path, "/download") {
		rest := strings.TrimPrefix(path, "/api/v1/jobs/")
		if !strings.Contains(rest, "/") {
			return true
		}
		if strings.Contains(rest, "/export-jobs/") {
			return true
		}
	}
	return false
}

// GIN middleware for clean HTTP logging
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		duration := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		if currentLevel > LevelDebug && isPollingPath(c.Request.Method, c.Request.URL.Path) {
			return
		}

		status := c.Writer.Status()
		statusColor := getStatusColor(status)

		if currentLevel <= LevelDebug {
			Debug("API request",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"duration", fmt.Sprintf("%.2fms", float64(duration.Nanoseconds())/1e6),
				"ip", c.ClientIP(),
				"user_agent", c.Request.UserAgent())
		} else {
			// Clean format for INFO: "INFO  15:04:05 POST /api/v1/jobs 202 5.13ms"
			fmt.Printf("INFO  %s %s %s %s%d%s %s\n",
				time.Now().Format("15:04:05"),
				c.Request.Method,
				path,
				statusColor,
				status,
				"\033[0m", // Reset color
				fmt.Sprintf("%.2fms", float64(duration.Nanoseconds())/1e6))
		}
	}
}

// getStatusColor returns ANSI color codes for HTTP status codes
func getStatusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "\033[32m" // Green
	case status >= 300 && status < 400:
		return "\033[33m" // Yellow
	case status >= 400 && status < 500:
		return "\033[31m" // Red
	case status >= 500:
		return "\033[35m" // Magenta
	default:
		return "\033[37m" // White
	}
}

// SetGinOutput configures GIN to use a custom writer that suppresses default logs
func SetGinOutput() {
	gin.DefaultWriter = io.Discard
}
