package ad

import (
	"context"
	"testing"

	"github.com/isometry/go-activedirectory/internal/locate"
)

func TestNewCredsPrincipalEmptyBeforeAcquire(t *testing.T) {
	creds := NewCreds("example.com", t.TempDir())
	if got := creds.Principal(); got != "" {
		t.Errorf("Principal() = %q, want empty before any Acquire", got)
	}
}

func TestAcquireRequiresRealmServers(t *testing.T) {
	creds := NewCreds("example.com", t.TempDir())

	err := creds.Acquire("EXAMPLE.COM", nil, "jdoe", "password123", "", "")
	if err == nil {
		t.Fatal("expected an error acquiring credentials with no realm servers configured")
	}
}

func TestReleaseBeforeAcquireIsSafe(t *testing.T) {
	creds := NewCreds("example.com", t.TempDir())
	creds.Release() // must not panic with nothing acquired
}

func TestClientDelegatesToInnerSearch(t *testing.T) {
	locator, err := locate.New(locate.Config{})
	if err != nil {
		t.Fatalf("unexpected error constructing locator: %v", err)
	}
	creds := NewCreds("example.com", t.TempDir())
	client := NewClient("example.com", locator, creds)

	_, err = client.Search(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error for a nil search request, delegated from adldap.Client")
	}
}
