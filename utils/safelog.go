// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks personal and financial data in production
// ============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction switches masking on and the console writer off.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = parseLogLevel(os.Getenv("LOG_LEVEL"))

	logger = newLogger(os.Stdout)
)

func parseLogLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func newLogger(w io.Writer) zerolog.Logger {
	if !IsProduction {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(LogLevel).With().Timestamp().Logger()
}

// SetOutput redirects all safe logging to w. Used by tests.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

// ============================================================================
// MASKING PATTERNS
// ============================================================================

var (
	emailRegex              = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	amountWithCurrencyRegex = regexp.MustCompile(`\b\d+([.,]\d{1,2})?\s*(€|EUR|CAD|USD|GBP|£|\$)`)
	cardRegex               = regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`)
	plaidTokenRegex         = regexp.MustCompile(`(access|public|link)-(sandbox|development|production)-[0-9a-fA-F-]+`)
	uuidRegex               = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// ============================================================================
// MASKING
// ============================================================================

// MaskString hides sensitive data in a free-form message.
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := input
	result = emailRegex.ReplaceAllString(result, "***@***.***")
	result = plaidTokenRegex.ReplaceAllString(result, "${1}-***")
	result = cardRegex.ReplaceAllString(result, "****-****-****-****")
	result = amountWithCurrencyRegex.ReplaceAllString(result, "***")
	result = uuidRegex.ReplaceAllStringFunc(result, shortenID)

	return result
}

func shortenID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return "***"
}

func MaskAmount(amount float64) string {
	if IsProduction {
		return "***"
	}
	return fmt.Sprintf("%.2f", amount)
}

// MaskID keeps the first 8 characters of an ID in production.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// SAFE LOGGING
// ============================================================================

func SafeDebug(format string, args ...interface{}) {
	logger.Debug().Msg(MaskString(fmt.Sprintf(format, args...)))
}

func SafeInfo(format string, args ...interface{}) {
	logger.Info().Msg(MaskString(fmt.Sprintf(format, args...)))
}

func SafeWarn(format string, args ...interface{}) {
	logger.Warn().Msg(MaskString(fmt.Sprintf(format, args...)))
}

func SafeError(format string, args ...interface{}) {
	logger.Error().Msg(MaskString(fmt.Sprintf(format, args...)))
}

// ============================================================================
// DOMAIN LOGGING
// ============================================================================

// LogBudgetAction logs a budget action without exposing amounts.
func LogBudgetAction(action string, budgetID string, userID string) {
	logger.Info().
		Str("component", "budget").
		Str("budget_id", MaskID(budgetID)).
		Str("user_id", MaskID(userID)).
		Msg(action)
}

// LogBankingAction logs a provider or account action.
func LogBankingAction(action string, accountID string, userID string) {
	logger.Info().
		Str("component", "banking").
		Str("account_id", MaskID(accountID)).
		Str("user_id", MaskID(userID)).
		Msg(action)
}

// LogBankingFailure logs a per-item failure that did not abort the surrounding run.
func LogBankingFailure(action string, accountID string, userID string, err error) {
	logger.Error().
		Str("component", "banking").
		Str("account_id", MaskID(accountID)).
		Str("user_id", MaskID(userID)).
		Str("error", MaskString(err.Error())).
		Msg(action)
}

func LogAuthAction(action string, userID string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	logger.Info().
		Str("component", "auth").
		Str("user_id", MaskID(userID)).
		Str("status", status).
		Msg(action)
}

// LogAPIRequest logs one HTTP request; UUIDs in the path are shortened in production.
func LogAPIRequest(method string, path string, userID string, statusCode int, duration time.Duration) {
	if IsProduction {
		path = uuidRegex.ReplaceAllStringFunc(path, shortenID)
	}
	ev := logger.Info()
	if statusCode >= 500 {
		ev = logger.Error()
	}
	ev.Str("component", "api").
		Str("method", method).
		Str("path", path).
		Str("user_id", MaskID(userID)).
		Int("status", statusCode).
		Dur("duration", duration).
		Msg("request")
}

func LogWebSocket(action string, userID string) {
	logger.Info().
		Str("component", "ws").
		Str("user_id", MaskID(userID)).
		Msg(action)
}

// ============================================================================
// STARTUP
// ============================================================================

func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

func LogStartup(appName string, version string, port string) {
	logger.Info().
		Str("mode", GetEnvMode()).
		Str("port", port).
		Str("log_level", LogLevel.String()).
		Msgf("🚀 %s v%s starting", appName, version)
	if IsProduction {
		logger.Info().Msg("⚠️  Production mode: sensitive data will be masked in logs")
	}
}
