package adldap

import (
	"context"
	"testing"

	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
	"github.com/isometry/go-activedirectory/internal/locate"
)

func newTestClient(homeDomain string) *Client {
	sandbox := krb5sandbox.New(homeDomain, "")
	locator, err := locate.New(locate.Config{})
	if err != nil {
		panic(err)
	}
	return New(homeDomain, locator, sandbox)
}

func TestNewUppercasesHomeDomain(t *testing.T) {
	c := newTestClient("example.com")
	if c.homeDomain != "EXAMPLE.COM" {
		t.Errorf("homeDomain = %s, want EXAMPLE.COM", c.homeDomain)
	}
}

func TestHomeDomainDN(t *testing.T) {
	c := newTestClient("example.com")
	want := "DC=example,DC=com"
	if got := c.HomeDomainDN(); got != want {
		t.Errorf("HomeDomainDN() = %s, want %s", got, want)
	}
}

func TestResolveContextEmptyDN(t *testing.T) {
	c := newTestClient("example.com")
	nc, err := c.resolveContext(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nc != "" {
		t.Errorf("expected empty naming context for empty dn, got %q", nc)
	}
}
