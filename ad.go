// Package ad is an Active Directory client library for non-Windows hosts:
// Kerberos authentication via an isolated credential sandbox, DC discovery
// and selection (the locator), and directory/password operations routed
// to the selected domain controller.
package ad

import (
	"context"

	"github.com/isometry/go-activedirectory/internal/adldap"
	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
	"github.com/isometry/go-activedirectory/internal/locate"
)

// Creds is an isolated Kerberos credential sandbox scoped to one home
// domain. It is safe for one goroutine at a time; sharing a single *Creds
// across concurrently-used Clients (or calling Acquire/Release on it from
// more than one goroutine at once) requires external synchronization — the
// source this library's Kerberos layer was modeled on is not documented as
// re-entrant either, and this library does not add locking beyond what
// krb5sandbox needs to keep the process-wide environment variables
// consistent (see internal/krb5sandbox).
type Creds struct {
	domain  string
	sandbox *krb5sandbox.Sandbox
}

// NewCreds returns a Creds for domain. tmpDir, if empty, uses the OS
// temporary directory for the sandbox's private files.
func NewCreds(domain, tmpDir string) *Creds {
	return &Creds{
		domain:  domain,
		sandbox: krb5sandbox.New(domain, tmpDir),
	}
}

// Acquire authenticates principal (bare or "user@REALM") and activates the
// sandbox's krb5.conf in the process environment (KRB5_CONFIG); only a
// copied ccache is also activated (KRB5CCNAME). Exactly one of
// password, keytabPath, or ccachePath (an existing system ccache to copy)
// should be supplied.
//
// servers must list at least one domain controller for principal's realm;
// callers typically obtain this from a Locator.LocateMany call before the
// first Acquire, since the sandbox's krb5.conf has no DNS fallback
// (dns_lookup_kdc = false, per spec.md §4.D).
func (c *Creds) Acquire(realm string, servers []string, principal, password, keytabPath, ccachePath string) error {
	if err := c.sandbox.SetRealmServers(realm, servers); err != nil {
		return err
	}
	return c.sandbox.Acquire(principal, password, keytabPath, ccachePath)
}

// Release tears down the sandbox's environment-variable frames and
// removes its private files.
func (c *Creds) Release() {
	c.sandbox.Release()
}

// Principal returns the currently-active principal, or "" if none.
func (c *Creds) Principal() string {
	return c.sandbox.Principal()
}

// Client is bound to a single home domain and routes directory and
// password operations to domain controllers selected by locator,
// authenticating with creds.
type Client struct {
	inner *adldap.Client
}

// NewClient returns a Client for homeDomain. locator should be a
// long-lived, shared instance (spec.md §9) so its DC cache is effective
// across Clients; creds must already have active credentials for a realm
// that can reach homeDomain.
func NewClient(homeDomain string, locator *locate.Locator, creds *Creds) *Client {
	return &Client{inner: adldap.New(homeDomain, locator, creds.sandbox)}
}

// Close unbinds every connection this client has opened.
func (c *Client) Close() { c.inner.Close() }

// Search performs a directory search. See adldap.SearchRequest for field
// semantics and defaults.
func (c *Client) Search(ctx context.Context, req *adldap.SearchRequest) (*adldap.SearchResult, error) {
	return c.inner.Search(ctx, req)
}

// Add creates a new directory object.
func (c *Client) Add(ctx context.Context, req *adldap.AddRequest) error {
	return c.inner.Add(ctx, req)
}

// Modify applies attribute modifications to an existing directory object.
func (c *Client) Modify(ctx context.Context, req *adldap.ModifyRequest) error {
	return c.inner.Modify(ctx, req)
}

// Delete removes a directory object.
func (c *Client) Delete(ctx context.Context, dn string) error {
	return c.inner.Delete(ctx, dn)
}

// Rename moves and/or renames a directory object.
func (c *Client) Rename(ctx context.Context, req *adldap.RenameRequest) error {
	return c.inner.Rename(ctx, req)
}

// ModRDN renames a directory object in place.
func (c *Client) ModRDN(ctx context.Context, dn, newRDN string, deleteOldRDN bool) error {
	return c.inner.ModRDN(ctx, dn, newRDN, deleteOldRDN)
}

// SetPassword sets principal's password, optionally pinning the operation
// to a specific DC (typically the PDC emulator).
func (c *Client) SetPassword(ctx context.Context, principal, newPassword, server string) error {
	return c.inner.SetPassword(ctx, principal, newPassword, server)
}

// ChangePassword changes the authenticating principal's own password,
// optionally pinning the operation to a specific DC.
func (c *Client) ChangePassword(ctx context.Context, newPassword, server string) error {
	return c.inner.ChangePassword(ctx, newPassword, server)
}

// WhoAmI returns the identity the current connection is bound as.
func (c *Client) WhoAmI(ctx context.Context) (*adldap.WhoAmIResult, error) {
	return c.inner.WhoAmI(ctx)
}
