package adldap

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Kind classifies the errors this module can return, independent of the
// underlying transport or mechanism that produced them.
type Kind int

const (
	// KindConfig covers missing or contradictory caller-supplied
	// configuration (no domain, no servers, malformed DN, ...).
	KindConfig Kind = iota
	// KindNotFound covers a name, DC, or directory object that does not
	// exist.
	KindNotFound
	// KindProtocol covers malformed wire data: bad BER, bad RFC1035
	// compression, an LDAP result the library did not expect.
	KindProtocol
	// KindTransport covers network failures: timeouts, connection resets,
	// DNS resolution failures.
	KindTransport
	// KindAuth covers bind/credential failures, including Kerberos
	// pre-authentication and kpasswd rejections.
	KindAuth
	// KindNoCcache covers the specific case of the Credential Sandbox
	// having no active ccache when one was required.
	KindNoCcache
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	case KindProtocol:
		return "protocol"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindNoCcache:
		return "no_ccache"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client's operations. Callers
// distinguish cases with errors.Is/As against the Kind, not by string
// matching. Errors from the credential sandbox itself (package krb5sandbox,
// surfaced by ad.Creds.Acquire) are plain wrapped errors, not *Error.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "adldap.Search"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, ErrNotFound) style checks against sentinel
// values built from the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// Sentinels usable with errors.Is to test kind only (Op/Message ignored by Is).
var (
	ErrConfig    = &Error{Kind: KindConfig}
	ErrNotFound  = &Error{Kind: KindNotFound}
	ErrProtocol  = &Error{Kind: KindProtocol}
	ErrTransport = &Error{Kind: KindTransport}
	ErrAuth      = &Error{Kind: KindAuth}
	ErrNoCcache  = &Error{Kind: KindNoCcache}
)

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// wrapLDAP categorizes a go-ldap error into our taxonomy, generalizing the
// teacher's ErrorCategory switch over LDAPResultCode into the narrower
// six-kind taxonomy this module exposes.
func wrapLDAP(op string, err error) error {
	if err == nil {
		return nil
	}
	var lerr *ldap.Error
	if !errors.As(err, &lerr) {
		return newErr(KindTransport, op, "ldap operation failed", err)
	}
	switch lerr.ResultCode {
	case ldap.LDAPResultNoSuchObject, ldap.LDAPResultNoSuchAttribute:
		return newErr(KindNotFound, op, "object or attribute not found", err)
	case ldap.LDAPResultInvalidCredentials, ldap.LDAPResultInappropriateAuthentication,
		ldap.LDAPResultAuthMethodNotSupported, ldap.LDAPResultStrongAuthRequired:
		return newErr(KindAuth, op, "authentication failed", err)
	case ldap.LDAPResultInsufficientAccessRights:
		return newErr(KindAuth, op, "insufficient access rights", err)
	case ldap.LDAPResultInvalidDNSyntax, ldap.LDAPResultConstraintViolation,
		ldap.LDAPResultObjectClassViolation, ldap.LDAPResultNamingViolation,
		ldap.LDAPResultEntryAlreadyExists:
		return newErr(KindConfig, op, "request rejected by directory", err)
	case ldap.LDAPResultProtocolError, ldap.LDAPResultOperationsError:
		return newErr(KindProtocol, op, "protocol error", err)
	case ldap.LDAPResultBusy, ldap.LDAPResultUnavailable, ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultUnwillingToPerform:
		return newErr(KindTransport, op, "server temporarily unavailable", err)
	default:
		return newErr(KindProtocol, op, "unexpected ldap result", err)
	}
}

// isRetryable reports whether a raw (pre-translation) LDAP error is worth
// retrying with backoff. This is an orthogonal resilience concern kept from
// the teacher's withRetry/isRetryableError — it runs before the error is
// translated into the *Error taxonomy, which itself is never retried.
func isRetryable(err error) bool {
	var lerr *ldap.Error
	if errors.As(err, &lerr) {
		switch lerr.ResultCode {
		case ldap.LDAPResultBusy, ldap.LDAPResultUnavailable, ldap.ErrorNetwork:
			return true
		default:
			return false
		}
	}

	var nerr net.Error
	if errors.As(err, &nerr) && (nerr.Timeout() || isTemporary(nerr)) {
		return true
	}

	if errors.Is(err, errNetworkTransient) {
		return true
	}

	return isGenericErrorRetryable(err)
}

// isTemporary reports err's deprecated net.Error Temporary() method if it
// implements one, for the dial/transport errors that still set it.
func isTemporary(err error) bool {
	type temporary interface{ Temporary() bool }
	t, ok := err.(temporary)
	return ok && t.Temporary()
}

// isGenericErrorRetryable substring-matches a raw error's text for common
// transient network conditions, generalizing the teacher's
// isGenericErrorRetryable so a plain *net.OpError from a failed dial is
// still retried even though it is neither an *ldap.Error nor errNetworkTransient.
func isGenericErrorRetryable(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection",
		"timeout",
		"network",
		"broken pipe",
		"connection reset",
		"temporary failure",
		"server temporarily unavailable",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var errNetworkTransient = errors.New("transient network error")
