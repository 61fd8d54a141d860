package database

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the server sends while it is going away.
const (
	sqlstateAdminShutdown = "57P01"
	sqlstateCrashShutdown = "57P02"
	sqlstateCannotConnect = "57P03"
	sqlstateUniqueViolate = "23505"
)

// IsTransient reports whether err is the kind of connection-level failure that
// serverless and CI networks produce routinely: resets, refusals, DNS misses,
// unreachable networks, EOF and server shutdown/termination.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateAdminShutdown, sqlstateCrashShutdown, sqlstateCannotConnect:
			return true
		}
		return false
	}

	switch {
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	// Drivers occasionally flatten the cause into the message.
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection reset", "connection refused", "no such host", "network is unreachable", "shutdown", "termination"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation from
// PostgreSQL or SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlstateUniqueViolate
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
