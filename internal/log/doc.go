// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler wraps any slog.Handler and sanitizes attributes before
// they are written:
//   - values of credential keys (password, token, dsn, ...) are masked
//   - passwords inside connection strings are masked, the rest is kept
//   - JWTs, bearer tokens and private key blocks are masked by pattern
//   - long strings, typically cell contents, are shortened
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("reading source",
//	    "source", "postgres://app:pass@db/sales", // logged as postgres://app:***REDACTED***@db/sales
//	)
package log
