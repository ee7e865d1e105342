package adldap

import (
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Scheme selects the port and attribute-replication semantics used to
// reach a domain controller.
type Scheme string

const (
	SchemeLDAP Scheme = "ldap" // port 389, full replica
	SchemeGC   Scheme = "gc"   // port 3268, global catalog partial replica
)

func (s Scheme) port() int {
	if s == SchemeGC {
		return 3268
	}
	return 389
}

// poolKey identifies one pooled connection: (naming context, pinned
// server or nil, scheme). Two requests against the same NC and scheme but
// different pinned servers get distinct connections.
type poolKey struct {
	namingContext string
	server        string // "" means "locator-selected"
	scheme        Scheme
}

// Scope is an LDAP search scope.
type Scope int

const (
	ScopeSubtree Scope = iota
	ScopeBase
	ScopeOneLevel
)

func (s Scope) ldapScope() int {
	switch s {
	case ScopeBase:
		return ldap.ScopeBaseObject
	case ScopeOneLevel:
		return ldap.ScopeSingleLevel
	default:
		return ldap.ScopeWholeSubtree
	}
}

// pagedSearchPageSize is the Simple Paged Results control page size, fixed
// per the external interface this library targets (500, not go-ldap's
// common 1000 default).
const pagedSearchPageSize = 500

// SearchRequest describes a directory search.
type SearchRequest struct {
	BaseDN     string // default: home domain DN
	Filter     string // default: (objectClass=*)
	Scope      Scope  // default: ScopeSubtree
	Attributes []string
	Server     string // pin a specific DC; empty defers to the Locator
	Scheme     Scheme // default: SchemeLDAP
}

// SearchResult is the collected, post-processed result of a search: nil-DN
// continuation referrals discarded, range-subtype attributes coalesced.
type SearchResult struct {
	Entries []*ldap.Entry
}

// ModOp is an LDAP modify operation kind.
type ModOp int

const (
	ModAdd ModOp = iota
	ModReplace
	ModDelete
)

// Mod is one (op, type, values) modification.
type Mod struct {
	Op     ModOp
	Type   string
	Values []string
}

// AddRequest describes a new directory object.
type AddRequest struct {
	DN         string
	Attributes []Attribute
}

// Attribute is a (type, values) pair, matching the original's 2-tuple add
// list shape.
type Attribute struct {
	Type   string
	Values []string
}

// ModifyRequest describes a directory object modification.
type ModifyRequest struct {
	DN   string
	Mods []Mod
}

// RenameRequest describes a modrdn/move operation. NewSuperior == "" means
// a plain modrdn (rename in place).
type RenameRequest struct {
	DN            string
	NewRDN        string
	NewSuperior   string
	DeleteOldRDN  bool
}

// WhoAmIResult is the parsed LDAP Who Am I? extended-operation response.
type WhoAmIResult struct {
	AuthzID           string
	Format            string // "dn", "upn", "sam", "sid", "unknown", "empty"
	DN                string
	UserPrincipalName string
	SAMAccountName    string
	SID               string
}

// defaultTimeLimit is the LDAP search TimeLimit this router uses when the
// caller does not override it: spec.md:156 has operations inherit the
// library's own timelimit, defaulted to 0 (server's own limit applies).
const defaultTimeLimit = 0 * time.Second
