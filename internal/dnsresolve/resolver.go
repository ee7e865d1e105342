// Package dnsresolve wraps DNS SRV/A/PTR lookups and implements the
// RFC 2782 weighted-shuffle ordering required by the DC locator.
package dnsresolve

import (
	"context"
	"net"

	"github.com/isometry/go-activedirectory/internal/obslog"
)

// SRV is one SRV record, with Target already stripped of its trailing dot.
type SRV struct {
	Target   string
	Port     uint16
	Priority uint16
	Weight   uint16
}

// Resolver issues DNS SRV/A/PTR lookups. A nil *net.Resolver uses the
// package default resolver (net.DefaultResolver).
type Resolver struct {
	net *net.Resolver
}

// New returns a Resolver using the system's default resolver.
func New() *Resolver {
	return &Resolver{net: net.DefaultResolver}
}

func (r *Resolver) resolver() *net.Resolver {
	if r.net != nil {
		return r.net
	}
	return net.DefaultResolver
}

// LookupSRV returns the SRV records for service/proto/name, or an empty
// slice on any DNS error — callers treat "no answer" and "no network"
// identically at this layer.
func (r *Resolver) LookupSRV(ctx context.Context, service, proto, name string) []SRV {
	log := obslog.For("dnsresolve")
	_, addrs, err := r.resolver().LookupSRV(ctx, service, proto, name)
	if err != nil {
		log.Debug("srv lookup failed", "name", name, "err", err)
		return nil
	}
	out := make([]SRV, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, SRV{
			Target:   trimTrailingDot(a.Target),
			Port:     a.Port,
			Priority: a.Priority,
			Weight:   a.Weight,
		})
	}
	return out
}

// LookupHost returns the IPv4/IPv6 addresses for host, or an empty slice
// on any DNS error.
func (r *Resolver) LookupHost(ctx context.Context, host string) []string {
	addrs, err := r.resolver().LookupHost(ctx, host)
	if err != nil {
		return nil
	}
	return addrs
}

// LookupAddr returns the PTR names for addr, or an empty slice on any DNS
// error. Each name has its trailing dot stripped.
func (r *Resolver) LookupAddr(ctx context.Context, addr string) []string {
	names, err := r.resolver().LookupAddr(ctx, addr)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, trimTrailingDot(n))
	}
	return out
}

func trimTrailingDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}
