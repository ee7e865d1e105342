package adldap

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
)

func TestRangeAttrPattern(t *testing.T) {
	tests := []struct {
		name      string
		attr      string
		wantMatch bool
		wantType  string
		wantLo    string
		wantHi    string
	}{
		{"bounded range", "member;range=0-1499", true, "member", "0", "1499"},
		{"open-ended range", "member;range=1500-*", true, "member", "1500", "*"},
		{"mixed-case Range keyword", "member;Range=0-999", true, "member", "0", "999"},
		{"plain attribute", "member", false, "", "", ""},
		{"unrelated semicolon option", "member;binary", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := rangeAttr.FindStringSubmatch(tt.attr)
			if tt.wantMatch && m == nil {
				t.Fatalf("expected %q to match rangeAttr", tt.attr)
			}
			if !tt.wantMatch {
				if m != nil {
					t.Fatalf("expected %q not to match rangeAttr", tt.attr)
				}
				return
			}
			if m[1] != tt.wantType || m[2] != tt.wantLo || m[3] != tt.wantHi {
				t.Errorf("got (%s, %s, %s), want (%s, %s, %s)", m[1], m[2], m[3], tt.wantType, tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestReplaceAttribute(t *testing.T) {
	attrs := []*ldap.EntryAttribute{
		{Name: "cn", Values: []string{"group1"}},
		{Name: "member;range=0-1", Values: []string{"a", "b"}},
	}

	out := replaceAttribute(attrs, "member;range=0-1", "member", []string{"a", "b", "c"})

	if len(out) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(out))
	}
	var found bool
	for _, a := range out {
		if a.Name == "member;range=0-1" {
			t.Fatalf("range-suffixed attribute name should have been removed")
		}
		if a.Name == "member" {
			found = true
			if len(a.Values) != 3 {
				t.Errorf("expected 3 coalesced values, got %d", len(a.Values))
			}
		}
	}
	if !found {
		t.Fatalf("expected bare \"member\" attribute in output")
	}
}
