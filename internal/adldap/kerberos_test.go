package adldap

import (
	"testing"

	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
)

func TestGssapiClientForRequiresActiveSandbox(t *testing.T) {
	sandbox := krb5sandbox.New("example.com", "")

	_, err := gssapiClientFor(sandbox)
	if err == nil {
		t.Fatal("expected an error for a sandbox with no active config")
	}
}
