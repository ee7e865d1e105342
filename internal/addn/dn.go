// Package addn provides distinguished-name handling for Active Directory:
// RFC 4514 escaping, case normalization, and the domain-name <-> DN mapping
// used to resolve a naming context for a search.
package addn

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// EscapeDNValue escapes special characters in a DN attribute value per RFC 4514.
func EscapeDNValue(value string) string {
	if value == "" {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 8)
	for i, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';':
			b.WriteRune('\\')
			b.WriteRune(r)
		case '#':
			if i == 0 {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		case ' ':
			if i == 0 || i == len(value)-1 {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		case 0:
			b.WriteString("\\00")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeDNValue reverses EscapeDNValue.
func UnescapeDNValue(value string) string {
	if value == "" || !strings.Contains(value, "\\") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	escaped := false
	var hexBuf []rune
	for i, r := range value {
		switch {
		case escaped:
			if isHex(r) {
				hexBuf = append(hexBuf, r)
				if len(hexBuf) == 2 {
					b.WriteRune(rune(hexVal(hexBuf[0])<<4 | hexVal(hexBuf[1])))
					hexBuf = hexBuf[:0]
					escaped = false
				}
				continue
			}
			if len(hexBuf) > 0 {
				b.WriteRune('\\')
				b.WriteString(string(hexBuf))
				hexBuf = hexBuf[:0]
			}
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			if i == len(value)-1 {
				b.WriteRune(r)
			} else {
				escaped = true
			}
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune('\\')
	}
	if len(hexBuf) > 0 {
		b.WriteRune('\\')
		b.WriteString(string(hexBuf))
	}
	return b.String()
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	default:
		return int(r-'A') + 10
	}
}

// NeedsDNEscaping reports whether value contains characters EscapeDNValue
// would change.
func NeedsDNEscaping(value string) bool {
	if value == "" {
		return false
	}
	if value[0] == ' ' || value[len(value)-1] == ' ' || value[0] == '#' {
		return true
	}
	for _, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';', 0:
			return true
		}
	}
	return false
}

// NormalizeCase rebuilds dn with uppercase attribute type descriptors,
// Active Directory's canonical rendering ("cn=a,dc=b" -> "CN=a,DC=b").
func NormalizeCase(dn string) (string, error) {
	dn = strings.TrimSpace(dn)
	if dn == "" {
		return "", nil
	}
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("invalid DN syntax: %w", err)
	}
	return render(parsed), nil
}

func render(parsed *ldap.DN) string {
	rdns := make([]string, 0, len(parsed.RDNs))
	for _, rdn := range parsed.RDNs {
		attrs := make([]string, 0, len(rdn.Attributes))
		for _, a := range rdn.Attributes {
			attrs = append(attrs, fmt.Sprintf("%s=%s", strings.ToUpper(a.Type), EscapeDNValue(a.Value)))
		}
		rdns = append(rdns, strings.Join(attrs, "+"))
	}
	return strings.Join(rdns, ",")
}

// Parent returns the parent DN by dropping the leftmost RDN.
func Parent(dn string) (string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("invalid DN syntax: %w", err)
	}
	if len(parsed.RDNs) <= 1 {
		return "", fmt.Errorf("DN has no parent: %s", dn)
	}
	return render(&ldap.DN{RDNs: parsed.RDNs[1:]}), nil
}

// IsChild reports whether child is a (possibly indirect) child of parent.
func IsChild(child, parent string) (bool, error) {
	pc, err := ldap.ParseDN(child)
	if err != nil {
		return false, fmt.Errorf("invalid child DN: %w", err)
	}
	pp, err := ldap.ParseDN(parent)
	if err != nil {
		return false, fmt.Errorf("invalid parent DN: %w", err)
	}
	if len(pc.RDNs) <= len(pp.RDNs) {
		return false, nil
	}
	tail := &ldap.DN{RDNs: pc.RDNs[len(pc.RDNs)-len(pp.RDNs):]}
	return strings.EqualFold(render(tail), render(pp)), nil
}

// DomainOf converts a DC-component DN into its DNS domain name:
// "DC=example,DC=com" -> "example.com". Mirrors the original's
// domain_name_from_dn.
func DomainOf(dn string) (string, error) {
	parsed, err := ldap.ParseDN(dn)
	if err != nil {
		return "", fmt.Errorf("invalid DN syntax: %w", err)
	}
	parts := make([]string, 0, len(parsed.RDNs))
	for _, rdn := range parsed.RDNs {
		if len(rdn.Attributes) != 1 || !strings.EqualFold(rdn.Attributes[0].Type, "DC") {
			return "", fmt.Errorf("DN is not a pure DC-component DN: %s", dn)
		}
		parts = append(parts, rdn.Attributes[0].Value)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("DN has no DC components: %s", dn)
	}
	return strings.Join(parts, "."), nil
}

// DNOf converts a DNS domain name into its DC-component DN:
// "example.com" -> "DC=example,DC=com". Mirrors the original's
// dn_from_domain_name.
func DNOf(domain string) string {
	labels := strings.Split(strings.Trim(domain, "."), ".")
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		if l == "" {
			continue
		}
		parts = append(parts, "DC="+EscapeDNValue(l))
	}
	return strings.Join(parts, ",")
}

// ResolveContext finds the naming context in contexts that is the longest
// case-insensitive DN suffix of (or equal to) dn. Mirrors the original's
// _resolve_context. An empty dn always resolves to the empty string
// (rootDSE), regardless of the contexts list.
func ResolveContext(dn string, contexts []string) (string, bool) {
	if dn == "" {
		return "", true
	}
	lowerDN := strings.ToLower(dn)
	best := ""
	found := false
	for _, nc := range contexts {
		lowerNC := strings.ToLower(nc)
		if lowerDN == lowerNC || strings.HasSuffix(lowerDN, ","+lowerNC) {
			if len(nc) > len(best) {
				best = nc
				found = true
			}
		}
	}
	return best, found
}
