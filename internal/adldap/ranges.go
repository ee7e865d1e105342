package adldap

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-ldap/ldap/v3"
)

// rangeAttr matches AD's range-subtype attribute name form:
// "<type>;range=<lo>-<hi|*>".
var rangeAttr = regexp.MustCompile(`^([^;]+);[Rr]ange=(\d+)-(\d+|\*)$`)

// coalesceRanges rewrites entry's range-subtype attributes into their
// bare-name form, re-querying conn for every subsequent slice. It fails
// hard (ProtocolError) if a continuation does not start exactly where the
// previous slice ended, per spec.md §4.E.
func coalesceRanges(conn *ldap.Conn, entry *ldap.Entry) error {
	for _, attr := range append([]*ldap.EntryAttribute(nil), entry.Attributes...) {
		m := rangeAttr.FindStringSubmatch(attr.Name)
		if m == nil {
			continue
		}
		baseType, hi := m[1], m[3]
		values := append([]string(nil), attr.Values...)

		for hi != "*" {
			hiN, err := strconv.Atoi(hi)
			if err != nil {
				return newErr(KindProtocol, "coalesceRanges", "non-numeric range upper bound", err)
			}
			nextAttr := fmt.Sprintf("%s;range=%d-*", baseType, hiN+1)
			req := ldap.NewSearchRequest(entry.DN, ldap.ScopeBaseObject, ldap.NeverDerefAliases, 1, 0, false,
				"(objectClass=*)", []string{nextAttr}, nil)
			res, err := conn.Search(req)
			if err != nil {
				return wrapLDAP("coalesceRanges", err)
			}
			if len(res.Entries) == 0 {
				// Object disappeared mid-retrieval; stop with what we have.
				break
			}

			found := false
			for _, a := range res.Entries[0].Attributes {
				m2 := rangeAttr.FindStringSubmatch(a.Name)
				if m2 == nil || m2[1] != baseType {
					continue
				}
				if m2[2] != strconv.Itoa(hiN+1) {
					return newErr(KindProtocol, "coalesceRanges",
						fmt.Sprintf("range continuation gap: expected %s;range=%d-*, server returned %s", baseType, hiN+1, a.Name), nil)
				}
				values = append(values, a.Values...)
				hi = m2[3]
				found = true
				break
			}
			if !found {
				return newErr(KindProtocol, "coalesceRanges", fmt.Sprintf("server dropped range subtype for %s", baseType), nil)
			}
		}

		entry.Attributes = replaceAttribute(entry.Attributes, attr.Name, baseType, values)
	}
	return nil
}

func replaceAttribute(attrs []*ldap.EntryAttribute, oldName, newName string, values []string) []*ldap.EntryAttribute {
	out := make([]*ldap.EntryAttribute, 0, len(attrs))
	for _, a := range attrs {
		if a.Name == oldName {
			continue
		}
		out = append(out, a)
	}
	out = append(out, &ldap.EntryAttribute{Name: newName, Values: values})
	return out
}
