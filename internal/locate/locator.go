// Package locate implements the DC Locator: site detection, candidate
// generation via DNS SRV, wave-based CLDAP probing, validation, and
// local/remote ordering of the surviving domain controllers.
package locate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/creasty/defaults"

	"github.com/isometry/go-activedirectory/internal/dnsresolve"
	"github.com/isometry/go-activedirectory/internal/netlogon"
	"github.com/isometry/go-activedirectory/internal/obslog"
)

// Role is the kind of domain controller being sought.
type Role string

const (
	RoleDC  Role = "dc"
	RoleGC  Role = "gc"
	RolePDC Role = "pdc"
)

// Config tunes a Locator. Zero-value fields are filled in with defaults()
// tags by New.
type Config struct {
	// Site, if set, skips automatic site detection.
	Site string
	// MaxServers is the number of hostnames LocateMany returns when its
	// caller passes maxServers <= 0 (RolePDC is still clamped to 1). A
	// positive maxServers argument is used as given.
	MaxServers int `default:"3"`
	// ProbeTimeout is the per-wave CLDAP reply budget.
	ProbeTimeout time.Duration `default:"2s"`
	// ProbeRetries is the number of resend waves per probe batch.
	ProbeRetries int `default:"3"`
}

// Locator discovers and selects domain controllers for a domain.
type Locator struct {
	cfg                    Config
	cache                  *Cache
	resolver               *dnsresolve.Resolver
	prober                 *netlogon.Prober
	site                   string
	siteDetectionAttempted bool
}

// New returns a Locator with defaults applied to cfg's zero fields.
func New(cfg Config) (*Locator, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("locate: apply defaults: %w", err)
	}
	return &Locator{
		cfg:      cfg,
		cache:    NewCache(),
		resolver: dnsresolve.New(),
		prober:   &netlogon.Prober{Timeout: cfg.ProbeTimeout, Retries: cfg.ProbeRetries},
		site:     cfg.Site,
	}, nil
}

// LocateMany finds up to maxServers domain controllers of role in domain.
// maxServers is clamped to 1 when role is RolePDC.
func (l *Locator) LocateMany(ctx context.Context, domain string, role Role, maxServers int) ([]string, error) {
	log := obslog.For("locate")
	domain = strings.ToUpper(domain)
	if role == RolePDC {
		maxServers = 1
	}
	if maxServers <= 0 {
		maxServers = l.cfg.MaxServers
	}

	if cached, ok := l.cache.Get(domain, role, maxServers); ok {
		log.Debug("cache hit", "domain", domain, "role", role)
		return cached, nil
	}

	if l.site == "" && !l.siteDetectionAttempted {
		l.siteDetectionAttempted = true
		if site, ok := l.detectSiteFor(ctx, domain); ok {
			l.site = site
			log.Debug("detected site", "domain", domain, "site", site)
		}
	}

	candidates := l.buildCandidates(ctx, domain, role)
	if len(candidates) == 0 {
		return nil, nil
	}

	var validated []candidate
	for start := 0; start < len(candidates) && len(validated) < maxServers; start += maxServers {
		end := min(start+maxServers, len(candidates))
		wave := candidates[start:end]

		targets := make([]netlogon.Target, 0, len(wave))
		for _, c := range wave {
			targets = append(targets, netlogon.Target{Host: c, Port: 389})
		}
		results, err := l.prober.Probe(ctx, targets, domain)
		if err != nil {
			log.Debug("probe wave failed", "err", err)
			continue
		}
		for _, r := range results {
			if validate(ctx, l.resolver, domain, role, r) {
				validated = append(validated, candidate{result: r, srvIndex: indexOf(candidates, r.Host)})
			}
		}
	}

	hostnames := l.order(validated, candidates)
	if len(hostnames) > maxServers {
		hostnames = hostnames[:maxServers]
	}
	l.cache.Put(domain, role, maxServers, hostnames)
	return hostnames, nil
}

// CheckDomainController probes a single caller-supplied server once and
// runs the same validation used by LocateMany.
func (l *Locator) CheckDomainController(ctx context.Context, server, domain string, role Role) (bool, error) {
	results, err := l.prober.Probe(ctx, []netlogon.Target{{Host: server, Port: 389}}, strings.ToUpper(domain))
	if err != nil {
		return false, fmt.Errorf("locate: probe %s: %w", server, err)
	}
	if len(results) == 0 {
		return false, nil
	}
	return validate(ctx, l.resolver, strings.ToUpper(domain), role, results[0]), nil
}

func (l *Locator) detectSiteFor(ctx context.Context, domain string) (string, bool) {
	records := dnsresolve.Order(l.resolver.LookupSRV(ctx, "ldap", "tcp", strings.ToLower(domain)))
	if len(records) == 0 {
		return "", false
	}
	const batch = 3
	var all []*netlogon.ProbeResult
	for start := 0; start < len(records); start += batch {
		end := min(start+batch, len(records))
		targets := make([]netlogon.Target, 0, end-start)
		for _, r := range records[start:end] {
			targets = append(targets, netlogon.Target{Host: r.Target, Port: int(r.Port)})
		}
		results, err := l.prober.Probe(ctx, targets, domain)
		if err != nil {
			continue
		}
		all = append(all, results...)
	}
	return detectSite(all)
}

// buildCandidates implements spec.md §4.C.3: site+role SRV results (if a
// site is known and role != pdc) followed by role-only SRV results,
// de-duplicated while preserving first-occurrence order.
func (l *Locator) buildCandidates(ctx context.Context, domain string, role Role) []string {
	var ordered []dnsresolve.SRV

	if l.site != "" && role != RolePDC {
		name := fmt.Sprintf("%s._sites.%s._msdcs.%s", strings.ToLower(l.site), strings.ToLower(string(role)), strings.ToLower(domain))
		siteRecords := l.resolver.LookupSRV(ctx, "ldap", "tcp", name)
		ordered = append(ordered, dnsresolve.Order(siteRecords)...)
	}
	roleName := string(role)
	if role == RolePDC {
		roleName = "pdc"
	}
	name := fmt.Sprintf("%s._msdcs.%s", roleName, strings.ToLower(domain))
	roleRecords := l.resolver.LookupSRV(ctx, "ldap", "tcp", name)
	ordered = append(ordered, dnsresolve.Order(roleRecords)...)

	seen := make(map[string]bool, len(ordered))
	out := make([]string, 0, len(ordered))
	for _, r := range ordered {
		if seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}
	return out
}

// candidate pairs a validated probe result with its position in the
// original SRV candidate list, used to order "local" survivors by SRV
// priority/weight rather than by arrival time.
type candidate struct {
	result   *netlogon.ProbeResult
	srvIndex int
}

// order implements spec.md §4.C.6: partition into local/remote by site,
// order locals by original SRV-candidate position and remotes by ascending
// RTT, then concatenate local ++ remote.
func (l *Locator) order(results []candidate, candidates []string) []string {
	var local, remote []candidate
	for _, c := range results {
		if l.site != "" && c.result.Reply != nil && strings.EqualFold(c.result.Reply.ServerSite, l.site) {
			local = append(local, c)
		} else {
			remote = append(remote, c)
		}
	}
	sortBy(local, func(a, b candidate) bool { return a.srvIndex < b.srvIndex })
	sortBy(remote, func(a, b candidate) bool { return a.result.RTT < b.result.RTT })

	out := make([]string, 0, len(local)+len(remote))
	for _, c := range local {
		out = append(out, c.result.Host)
	}
	for _, c := range remote {
		out = append(out, c.result.Host)
	}
	return out
}

func sortBy(s []candidate, less func(a, b candidate) bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return len(s)
}
