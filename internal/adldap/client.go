// Package adldap implements the AD Client / Connection Router: DN to
// naming-context resolution, a connection pool keyed by (naming context,
// server, scheme), paged search with range-subtype coalescing, directory
// writes, and Kerberos password operations.
package adldap

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-ldap/ldap/v3"

	"github.com/isometry/go-activedirectory/internal/addn"
	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
	"github.com/isometry/go-activedirectory/internal/locate"
	"github.com/isometry/go-activedirectory/internal/obslog"
)

// Client is bound to a single home domain, which fixes its default search
// base. Per spec.md §5, a Client is not re-entrant with respect to its own
// connection pool without external synchronisation; callers serialize
// concurrent use themselves.
type Client struct {
	homeDomain string
	locator    *locate.Locator
	sandbox    *krb5sandbox.Sandbox
	pool       *pool

	mu              sync.Mutex
	forestRoot      string   // upper-case domain from rootDomainNamingContext
	schemaNC        string   // lower-case schemaNamingContext DN
	configurationNC string   // lower-case configurationNamingContext DN
	namingContexts  []string // lower-case DNs, rootDSE namingContexts plus every crossRef nCName under cn=Partitions
}

// New returns a Client for homeDomain, routed through locator and
// authenticated using sandbox's active credentials.
func New(homeDomain string, locator *locate.Locator, sandbox *krb5sandbox.Sandbox) *Client {
	return &Client{
		homeDomain: strings.ToUpper(homeDomain),
		locator:    locator,
		sandbox:    sandbox,
		pool:       newPool(locator, sandbox),
	}
}

// Close unbinds every pooled connection.
func (c *Client) Close() {
	c.pool.close()
}

// HomeDomainDN returns the DN corresponding to the client's home domain.
func (c *Client) HomeDomainDN() string {
	return addn.DNOf(strings.ToLower(c.homeDomain))
}

// ensureForest lazily discovers forest-wide state per spec.md:128: one
// unauthenticated search against the rootDSE for rootDomainNamingContext/
// schemaNamingContext/configurationNamingContext/namingContexts, followed
// by one authenticated search of cn=Partitions under the configuration NC
// to enumerate every crossRef's nCName — the full forest NC list, which a
// single DC's own rootDSE namingContexts does not provide for domains
// outside the contacted DC's own domain.
func (c *Client) ensureForest(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.namingContexts != nil {
		return nil
	}

	host, err := c.pool.selectServer(ctx, poolKey{namingContext: c.HomeDomainDN(), scheme: SchemeLDAP})
	if err != nil {
		return err
	}

	conn, err := c.pool.dial(host, SchemeLDAP)
	if err != nil {
		return newErr(KindTransport, "ensureForest", fmt.Sprintf("connect to %s", host), err)
	}
	defer conn.Close()

	req := ldap.NewSearchRequest("", ldap.ScopeBaseObject, ldap.NeverDerefAliases, 1, 0, false,
		"(objectClass=*)", []string{"rootDomainNamingContext", "schemaNamingContext", "configurationNamingContext", "namingContexts"}, nil)
	res, err := conn.Search(req)
	if err != nil {
		return wrapLDAP("ensureForest.rootDSE", err)
	}
	if len(res.Entries) == 0 {
		return newErr(KindNotFound, "ensureForest", "rootDSE search returned empty", nil)
	}
	entry := res.Entries[0]

	rootNC := entry.GetAttributeValue("rootDomainNamingContext")
	rootDomain, err := addn.DomainOf(rootNC)
	if err != nil {
		return newErr(KindProtocol, "ensureForest", "malformed rootDomainNamingContext", err)
	}
	c.forestRoot = strings.ToUpper(rootDomain)

	configNC := entry.GetAttributeValue("configurationNamingContext")
	if configNC == "" {
		return newErr(KindProtocol, "ensureForest", "rootDSE missing configurationNamingContext", nil)
	}
	c.configurationNC = strings.ToLower(configNC)
	c.schemaNC = strings.ToLower(entry.GetAttributeValue("schemaNamingContext"))

	nc := make([]string, 0, len(entry.GetAttributeValues("namingContexts")))
	seen := make(map[string]bool)
	for _, ctxDN := range entry.GetAttributeValues("namingContexts") {
		lower := strings.ToLower(ctxDN)
		if !seen[lower] {
			seen[lower] = true
			nc = append(nc, lower)
		}
	}

	if err := bindGSSAPI(conn, c.sandbox, host); err != nil {
		return err
	}

	partitionsBase := "cn=Partitions," + configNC
	partReq := ldap.NewSearchRequest(partitionsBase, ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=crossRef)", []string{"nCName"}, nil)
	partRes, err := conn.Search(partReq)
	if err != nil {
		return wrapLDAP("ensureForest.partitions", err)
	}
	for _, e := range partRes.Entries {
		ncName := e.GetAttributeValue("nCName")
		if ncName == "" {
			continue
		}
		lower := strings.ToLower(ncName)
		if !seen[lower] {
			seen[lower] = true
			nc = append(nc, lower)
		}
	}
	c.namingContexts = nc

	obslog.For("adldap").Debug("forest discovered", "root", c.forestRoot, "naming_contexts", len(nc))
	return nil
}

// resolveContext maps dn to its owning naming context: the longest
// case-insensitive suffix among the discovered contexts. An empty dn
// resolves to "" (rootDSE), which callers must pair with an explicit
// server.
func (c *Client) resolveContext(ctx context.Context, dn string) (string, error) {
	if dn == "" {
		return "", nil
	}
	if err := c.ensureForest(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	contexts := c.namingContexts
	c.mu.Unlock()

	nc, ok := addn.ResolveContext(dn, contexts)
	if !ok {
		return "", newErr(KindNotFound, "resolveContext", fmt.Sprintf("no naming context covers %s", dn), nil)
	}
	return nc, nil
}

// connFor returns a bound connection for the NC that owns dn, on the
// given scheme and optional pinned server.
func (c *Client) connFor(ctx context.Context, dn, server string, scheme Scheme) (*ldap.Conn, poolKey, error) {
	nc, err := c.resolveContext(ctx, dn)
	if err != nil {
		return nil, poolKey{}, err
	}
	if nc == "" && server == "" {
		return nil, poolKey{}, newErr(KindConfig, "connFor", "empty naming context requires an explicit server", nil)
	}
	key := poolKey{namingContext: nc, server: server, scheme: scheme}
	conn, err := c.pool.get(ctx, key)
	return conn, key, err
}
