package adldap

import (
	"context"
	"testing"

	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
	"github.com/isometry/go-activedirectory/internal/locate"
)

func newTestPool() *pool {
	locator, err := locate.New(locate.Config{})
	if err != nil {
		panic(err)
	}
	sandbox := krb5sandbox.New("example.com", "")
	return newPool(locator, sandbox)
}

func TestSchemePort(t *testing.T) {
	if SchemeLDAP.port() != 389 {
		t.Errorf("SchemeLDAP.port() = %d, want 389", SchemeLDAP.port())
	}
	if SchemeGC.port() != 3268 {
		t.Errorf("SchemeGC.port() = %d, want 3268", SchemeGC.port())
	}
}

func TestPoolSelectServerRejectsMalformedNamingContext(t *testing.T) {
	p := newTestPool()
	_, err := p.selectServer(context.Background(), poolKey{namingContext: "not a dn", scheme: SchemeLDAP})
	if err == nil {
		t.Fatal("expected an error for a malformed naming context")
	}
	kind, ok := KindOf(err)
	if !ok || kind != KindConfig {
		t.Errorf("expected KindConfig, got %v (ok=%v)", err, ok)
	}
}

func TestPoolGetReusesExistingConnection(t *testing.T) {
	p := newTestPool()
	key := poolKey{namingContext: "DC=example,DC=com", scheme: SchemeLDAP}
	p.conns[key] = &pooledConn{key: key, conn: nil}

	conn, err := p.get(context.Background(), key)
	if err != nil {
		t.Fatalf("unexpected error reusing pooled connection: %v", err)
	}
	if conn != nil {
		t.Errorf("expected the sentinel nil connection to be returned unchanged")
	}
}

func TestPoolDropOfUnknownKeyIsNoop(t *testing.T) {
	p := newTestPool()
	key := poolKey{namingContext: "DC=example,DC=com", scheme: SchemeLDAP}

	p.drop(key) // must not panic when the key was never populated

	if _, ok := p.conns[key]; ok {
		t.Errorf("expected no entry for a key that was never added")
	}
}
