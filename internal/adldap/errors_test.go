package adldap

import (
	"errors"
	"testing"

	"github.com/go-ldap/ldap/v3"
)

func TestWrapLDAP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantNil    bool
	}{
		{"nil", nil, 0, true},
		{"not an ldap.Error", errors.New("boom"), KindTransport, false},
		{"no such object", ldap.NewError(ldap.LDAPResultNoSuchObject, errors.New("x")), KindNotFound, false},
		{"no such attribute", ldap.NewError(ldap.LDAPResultNoSuchAttribute, errors.New("x")), KindNotFound, false},
		{"invalid credentials", ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("x")), KindAuth, false},
		{"insufficient access", ldap.NewError(ldap.LDAPResultInsufficientAccessRights, errors.New("x")), KindAuth, false},
		{"invalid dn syntax", ldap.NewError(ldap.LDAPResultInvalidDNSyntax, errors.New("x")), KindConfig, false},
		{"entry already exists", ldap.NewError(ldap.LDAPResultEntryAlreadyExists, errors.New("x")), KindConfig, false},
		{"protocol error", ldap.NewError(ldap.LDAPResultProtocolError, errors.New("x")), KindProtocol, false},
		{"busy", ldap.NewError(ldap.LDAPResultBusy, errors.New("x")), KindTransport, false},
		{"unavailable", ldap.NewError(ldap.LDAPResultUnavailable, errors.New("x")), KindTransport, false},
		{"unexpected code", ldap.NewError(9999, errors.New("x")), KindProtocol, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapLDAP("op", tt.err)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("wrapLDAP(nil) = %v, want nil", got)
				}
				return
			}
			kind, ok := KindOf(got)
			if !ok {
				t.Fatalf("wrapLDAP result is not *Error: %v", got)
			}
			if kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", kind, tt.wantKind)
			}
		})
	}
}

func TestErrorIsMatchesOnKindOnly(t *testing.T) {
	e1 := newErr(KindNotFound, "opA", "message A", nil)
	e2 := newErr(KindNotFound, "opB", "message B", errors.New("different cause"))

	if !errors.Is(e1, ErrNotFound) {
		t.Errorf("expected e1 to match ErrNotFound sentinel")
	}
	if !errors.Is(e1, e2) {
		t.Errorf("expected e1 and e2 to match: both KindNotFound, Is compares Kind only")
	}
	if errors.Is(e1, ErrAuth) {
		t.Errorf("expected e1 not to match ErrAuth sentinel")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"busy", ldap.NewError(ldap.LDAPResultBusy, errors.New("x")), true},
		{"unavailable", ldap.NewError(ldap.LDAPResultUnavailable, errors.New("x")), true},
		{"network error", ldap.NewError(ldap.ErrorNetwork, errors.New("x")), true},
		{"invalid credentials not retryable", ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("x")), false},
		{"transient sentinel", errNetworkTransient, true},
		{"raw dial connection refused", errors.New("dial tcp 10.0.0.1:389: connection refused"), true},
		{"raw broken pipe", errors.New("write tcp 10.0.0.1:389: broken pipe"), true},
		{"unrelated error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}
