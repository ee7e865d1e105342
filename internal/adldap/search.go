package adldap

import (
	"context"

	"github.com/go-ldap/ldap/v3"
)

// Search performs a directory search, driving the Simple Paged Results
// control at page size 500 and coalescing range-subtype attributes on
// every returned entry. Entries with a nil DN (LDAP continuation
// referrals) are discarded.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if req == nil {
		return nil, newErr(KindConfig, "Search", "search request cannot be nil", nil)
	}

	baseDN := req.BaseDN
	if baseDN == "" {
		baseDN = c.HomeDomainDN()
	}
	filter := req.Filter
	if filter == "" {
		filter = "(objectClass=*)"
	}
	scope := req.Scope
	scheme := req.Scheme
	if scheme == "" {
		scheme = SchemeLDAP
	}

	conn, key, err := c.connFor(ctx, baseDN, req.Server, scheme)
	if err != nil {
		return nil, err
	}

	entries, err := c.pagedSearch(ctx, conn, baseDN, filter, scope, req.Attributes)
	if err != nil {
		c.pool.drop(key)
		return nil, err
	}

	out := make([]*ldap.Entry, 0, len(entries))
	for _, e := range entries {
		if e.DN == "" {
			continue
		}
		if err := coalesceRanges(conn, e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return &SearchResult{Entries: out}, nil
}

func (c *Client) pagedSearch(ctx context.Context, conn *ldap.Conn, baseDN, filter string, scope Scope, attrs []string) ([]*ldap.Entry, error) {
	paging := ldap.NewControlPaging(pagedSearchPageSize)
	var all []*ldap.Entry

	for {
		req := ldap.NewSearchRequest(baseDN, scope.ldapScope(), ldap.NeverDerefAliases, 0, int(defaultTimeLimit.Seconds()), false,
			filter, attrs, []ldap.Control{paging})

		var res *ldap.SearchResult
		err := withRetry(ctx, func() error {
			var searchErr error
			res, searchErr = conn.Search(req)
			return searchErr
		})
		if err != nil {
			return nil, wrapLDAP("pagedSearch", err)
		}
		all = append(all, res.Entries...)

		respControl, ok := ldap.FindControl(res.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
		if !ok {
			return nil, newErr(KindProtocol, "pagedSearch", "server refused paging: no paging control in response", nil)
		}
		if len(respControl.Cookie) == 0 {
			break
		}
		paging.SetCookie(respControl.Cookie)
	}
	return all, nil
}
