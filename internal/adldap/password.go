package adldap

import (
	"context"
	"strings"

	"github.com/jcmturner/gokrb5/v8/kpasswd"

	"github.com/isometry/go-activedirectory/internal/locate"
)

// SetPassword sets principal's password via the Kerberos Set Password
// protocol (kpasswd, RFC 3244), using the sandbox's currently-acquired
// credentials as the authenticating identity. If principal carries no
// "@realm", the client's home domain is attached. If server is non-empty,
// the sandbox's configuration is temporarily pinned to that one DC for the
// duration of the call (the Kerberos library cannot take a target server
// directly) and refreshed from the Locator afterward.
func (c *Client) SetPassword(ctx context.Context, principal, newPassword, server string) error {
	principal, realm := c.qualifyPrincipal(principal)
	return c.withPinnedRealmServer(ctx, realm, server, func() error {
		cl := c.sandbox.Client()
		if cl == nil {
			return newErr(KindAuth, "SetPassword", "no active Kerberos credentials in sandbox", nil)
		}
		user := principal
		if idx := strings.IndexByte(user, '@'); idx >= 0 {
			user = user[:idx]
		}
		ok, err := kpasswd.SetPassword(cl, newPassword, user, realm)
		if err != nil {
			return newErr(KindAuth, "SetPassword", "kpasswd set_password failed", err)
		}
		if !ok {
			return newErr(KindAuth, "SetPassword", "kpasswd set_password was not applied by the KDC", nil)
		}
		return nil
	})
}

// ChangePassword changes the authenticating principal's own password via
// the Kerberos Change Password protocol.
func (c *Client) ChangePassword(ctx context.Context, newPassword, server string) error {
	_, realm := c.qualifyPrincipal(c.sandbox.Principal())
	return c.withPinnedRealmServer(ctx, realm, server, func() error {
		cl := c.sandbox.Client()
		if cl == nil {
			return newErr(KindAuth, "ChangePassword", "no active Kerberos credentials in sandbox", nil)
		}
		ok, err := kpasswd.ChangePasswd(cl, newPassword)
		if err != nil {
			return newErr(KindAuth, "ChangePassword", "kpasswd change_password failed", err)
		}
		if !ok {
			return newErr(KindAuth, "ChangePassword", "kpasswd change_password was not applied by the KDC", nil)
		}
		return nil
	})
}

// qualifyPrincipal attaches the client's home domain to principal if it
// carries no realm, and returns the realm used.
func (c *Client) qualifyPrincipal(principal string) (qualified, realm string) {
	if idx := strings.IndexByte(principal, '@'); idx >= 0 {
		return principal, strings.ToUpper(principal[idx+1:])
	}
	return principal + "@" + c.homeDomain, c.homeDomain
}

// withPinnedRealmServer, when server != "", overrides realm's materialized
// DC list in the sandbox to just that server for the duration of fn, then
// force-refreshes it from the Locator regardless of fn's outcome.
func (c *Client) withPinnedRealmServer(ctx context.Context, realm, server string, fn func() error) error {
	if server == "" {
		return fn()
	}
	if err := c.sandbox.OverrideRealmServers(realm, server); err != nil {
		return newErr(KindConfig, "withPinnedRealmServer", "pin realm server", err)
	}

	err := fn()

	domain := strings.ToLower(realm)
	hosts, lookupErr := c.locator.LocateMany(ctx, domain, locate.RoleDC, 3)
	if lookupErr == nil && len(hosts) > 0 {
		_ = c.sandbox.RefreshRealmServers(realm, hosts)
	}
	return err
}
