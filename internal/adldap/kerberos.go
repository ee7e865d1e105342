package adldap

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"

	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
)

// gssapiClientFor builds a fresh GSSAPI client scoped to sandbox's private
// krb5.conf, selecting the same credential source (ccache, keytab, or
// password) the sandbox was last acquired with. A fresh client is built
// per bind rather than reused because the go-ldap gssapi package consumes
// one security context per bind and expects DeleteSecContext afterward.
func gssapiClientFor(sandbox *krb5sandbox.Sandbox) (ldap.GSSAPIClient, error) {
	configPath, user, realm, ccachePath, keytabPath, password := sandbox.BindMaterial()
	if configPath == "" {
		return nil, fmt.Errorf("adldap: no active Kerberos sandbox credentials")
	}

	switch {
	case ccachePath != "":
		return gssapi.NewClientFromCCache(ccachePath, configPath, krb5client.DisablePAFXFAST(true))
	case keytabPath != "":
		return gssapi.NewClientWithKeytab(user, realm, keytabPath, configPath, krb5client.DisablePAFXFAST(true))
	case password != "":
		return gssapi.NewClientWithPassword(user, realm, password, configPath, krb5client.DisablePAFXFAST(true))
	default:
		return nil, fmt.Errorf("adldap: sandbox has no credential material to bind with")
	}
}

// bindGSSAPI performs the GSSAPI/SASL bind on conn using sandbox's active
// credentials, targeting the LDAP service principal on host.
func bindGSSAPI(conn *ldap.Conn, sandbox *krb5sandbox.Sandbox, host string) error {
	client, err := gssapiClientFor(sandbox)
	if err != nil {
		return newErr(KindAuth, "gssapi_bind", "build GSSAPI client", err)
	}
	defer client.DeleteSecContext() //nolint:errcheck

	spn := "ldap/" + host
	if err := conn.GSSAPIBind(client, spn, ""); err != nil {
		return wrapLDAP("gssapi_bind", err)
	}
	return nil
}
