package locate

import (
	"context"
	"strings"

	"github.com/isometry/go-activedirectory/internal/dnsresolve"
	"github.com/isometry/go-activedirectory/internal/netlogon"
)

// roleFlag reports whether a reply's flags satisfy role.
func roleFlag(role Role, reply *netlogon.Reply) bool {
	switch role {
	case RoleDC:
		return reply.HasFlag(netlogon.FlagLDAP)
	case RoleGC:
		return reply.HasFlag(netlogon.FlagGC)
	case RolePDC:
		return reply.HasFlag(netlogon.FlagPDC)
	default:
		return false
	}
}

// validate runs the forward/reverse/forward DNS round trip and role/domain
// checks spec.md §4.C.5 requires and reports whether all of them passed.
// pr is not modified: no per-check validation flags are recorded on it.
func validate(ctx context.Context, resolver *dnsresolve.Resolver, domain string, role Role, pr *netlogon.ProbeResult) bool {
	if pr.Reply == nil {
		return false
	}
	if !roleFlag(role, pr.Reply) {
		return false
	}
	if !strings.EqualFold(pr.Reply.Domain, domain) {
		return false
	}

	forward := resolver.LookupHost(ctx, pr.Reply.Hostname)
	if len(forward) != 1 {
		return false
	}
	addr := forward[0]

	ptrNames := resolver.LookupAddr(ctx, addr)
	if len(ptrNames) != 1 || !strings.EqualFold(ptrNames[0], pr.Reply.Hostname) {
		return false
	}

	forward2 := resolver.LookupHost(ctx, ptrNames[0])
	if len(forward2) != 1 || forward2[0] != addr {
		return false
	}

	return true
}
