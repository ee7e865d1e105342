package adldap

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ldap/ldap/v3"

	"github.com/isometry/go-activedirectory/internal/addn"
	"github.com/isometry/go-activedirectory/internal/krb5sandbox"
	"github.com/isometry/go-activedirectory/internal/locate"
	"github.com/isometry/go-activedirectory/internal/obslog"
)

// pooledConn is one bound connection and the key it lives under.
type pooledConn struct {
	key  poolKey
	conn *ldap.Conn
}

// pool is the connection router's cache of (naming-context, server,
// scheme) -> bound LDAP session, generalizing the original single-pool,
// single-config design to the per-NC keying spec.md §3 requires.
type pool struct {
	mu       sync.Mutex
	conns    map[poolKey]*pooledConn
	locator  *locate.Locator
	sandbox  *krb5sandbox.Sandbox
}

func newPool(locator *locate.Locator, sandbox *krb5sandbox.Sandbox) *pool {
	return &pool{
		conns:   make(map[poolKey]*pooledConn),
		locator: locator,
		sandbox: sandbox,
	}
}

// get returns the bound connection for key, establishing it (selecting a
// server via the Locator if none was pinned) on first use.
func (p *pool) get(ctx context.Context, key poolKey) (*ldap.Conn, error) {
	p.mu.Lock()
	if existing, ok := p.conns[key]; ok {
		p.mu.Unlock()
		return existing.conn, nil
	}
	p.mu.Unlock()

	host, err := p.selectServer(ctx, key)
	if err != nil {
		return nil, err
	}

	var conn *ldap.Conn
	err = withRetry(ctx, func() error {
		var dialErr error
		conn, dialErr = p.dial(host, key.scheme)
		return dialErr
	})
	if err != nil {
		return nil, newErr(KindTransport, "pool.dial", fmt.Sprintf("connect to %s", host), err)
	}

	if err := bindGSSAPI(conn, p.sandbox, host); err != nil {
		conn.Close()
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.conns[key]; ok {
		// Lost the race with a concurrent caller; keep the winner, close ours.
		conn.Close()
		return existing.conn, nil
	}
	p.conns[key] = &pooledConn{key: key, conn: conn}
	return conn, nil
}

// selectServer resolves key's server: the pinned one (validated) or the
// Locator's top choice for the NC's domain and key's scheme-implied role.
func (p *pool) selectServer(ctx context.Context, key poolKey) (string, error) {
	log := obslog.For("adldap")
	domain, err := addn.DomainOf(key.namingContext)
	if err != nil {
		return "", newErr(KindConfig, "pool.selectServer", "cannot derive domain from naming context", err)
	}

	role := locate.RoleDC
	if key.scheme == SchemeGC {
		role = locate.RoleGC
	}

	if key.server != "" {
		ok, err := p.locator.CheckDomainController(ctx, key.server, domain, role)
		if err != nil {
			return "", newErr(KindTransport, "pool.selectServer", "validate pinned server", err)
		}
		if !ok {
			return "", newErr(KindNotFound, "pool.selectServer", fmt.Sprintf("pinned server %s failed validation for role %s", key.server, role), nil)
		}
		return key.server, nil
	}

	hosts, err := p.locator.LocateMany(ctx, domain, role, 1)
	if err != nil {
		return "", newErr(KindTransport, "pool.selectServer", "locate domain controllers", err)
	}
	if len(hosts) == 0 {
		return "", newErr(KindNotFound, "pool.selectServer", fmt.Sprintf("no %s servers found for domain %s", role, domain), nil)
	}
	log.Debug("selected server", "domain", domain, "role", role, "host", hosts[0])
	return hosts[0], nil
}

func (p *pool) dial(host string, scheme Scheme) (*ldap.Conn, error) {
	url := fmt.Sprintf("ldap://%s:%d", host, scheme.port())
	return ldap.DialURL(url)
}

// close unbinds and drops every pooled connection.
func (p *pool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, pc := range p.conns {
		if err := pc.conn.Unbind(); err != nil {
			pc.conn.Close()
		}
		delete(p.conns, key)
	}
}

// drop removes key's connection from the pool without closing the server
// side gracefully, used after a transport error surfaces to the caller
// (spec.md §4.E: "the pool entry should be dropped by the caller").
func (p *pool) drop(key poolKey) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pc, ok := p.conns[key]; ok {
		pc.conn.Close()
		delete(p.conns, key)
	}
}
