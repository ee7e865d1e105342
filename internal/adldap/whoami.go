package adldap

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

var (
	dnFormatPattern  = regexp.MustCompile(`^[A-Za-z]+=.*`)
	sidFormatPattern = regexp.MustCompile(`^S-\d+-\d+-\d+(-\d+)*$`)
)

// WhoAmI performs the LDAP Who Am I? extended operation against the home
// domain and parses the returned authorization ID into its constituent
// format (DN, UPN, SAM, or SID).
func (c *Client) WhoAmI(ctx context.Context) (*WhoAmIResult, error) {
	conn, key, err := c.connFor(ctx, c.HomeDomainDN(), "", SchemeLDAP)
	if err != nil {
		return nil, err
	}

	var res *ldap.WhoAmIResult
	err = withRetry(ctx, func() error {
		var whoamiErr error
		res, whoamiErr = conn.WhoAmI(nil)
		return whoamiErr
	})
	if err != nil {
		c.pool.drop(key)
		return nil, wrapLDAP("WhoAmI", err)
	}

	result := &WhoAmIResult{AuthzID: res.AuthzID}
	parseAuthzID(result)
	return result, nil
}

func parseAuthzID(result *WhoAmIResult) {
	if result.AuthzID == "" {
		result.Format = "empty"
		return
	}
	id := strings.TrimPrefix(result.AuthzID, "u:")

	switch {
	case isDNFormat(id):
		result.Format = "dn"
		result.DN = id
	case strings.Contains(id, "@") && !strings.Contains(id, "\\"):
		result.Format = "upn"
		result.UserPrincipalName = id
	case strings.Contains(id, "\\") && !strings.HasPrefix(id, "S-"):
		result.Format = "sam"
		result.SAMAccountName = id
	case sidFormatPattern.MatchString(id):
		result.Format = "sid"
		result.SID = id
	default:
		result.Format = "unknown"
	}
}

func isDNFormat(s string) bool {
	return dnFormatPattern.MatchString(s) &&
		(strings.Contains(s, "CN=") || strings.Contains(s, "OU=") || strings.Contains(s, "DC="))
}
