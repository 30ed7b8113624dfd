package database

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"folio-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsTransient reports whether err looks like a dropped or refused connection
// rather than a problem with the statement itself.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrConnectionTransient) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientCode(pgErr.Code)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// Class 08 is connection exceptions; 57P0x are admin/crash shutdowns and
// 53300 is too_many_connections.
func isTransientCode(code string) bool {
	if strings.HasPrefix(code, "08") {
		return true
	}
	switch code {
	case "57P01", "57P02", "57P03", "53300":
		return true
	}
	return false
}

// Classify tags transient errors with domain.ErrConnectionTransient so callers
// outside this package can decide on retries with errors.Is.
func Classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrConnectionTransient) || !IsTransient(err) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrConnectionTransient, err)
}
