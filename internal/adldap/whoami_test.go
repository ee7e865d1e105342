package adldap

import "testing"

func TestParseAuthzID(t *testing.T) {
	tests := []struct {
		name   string
		authzID string
		wantFormat string
		wantValue  string
	}{
		{"empty", "", "empty", ""},
		{"dn", "u:CN=jdoe,OU=Users,DC=example,DC=com", "dn", "CN=jdoe,OU=Users,DC=example,DC=com"},
		{"upn", "u:jdoe@example.com", "upn", "jdoe@example.com"},
		{"sam", "u:EXAMPLE\\jdoe", "sam", "EXAMPLE\\jdoe"},
		{"sid", "u:S-1-5-21-111-222-333-1001", "sid", "S-1-5-21-111-222-333-1001"},
		{"unknown", "u:???", "unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &WhoAmIResult{AuthzID: tt.authzID}
			parseAuthzID(result)

			if result.Format != tt.wantFormat {
				t.Errorf("Format = %s, want %s", result.Format, tt.wantFormat)
			}
			switch tt.wantFormat {
			case "dn":
				if result.DN != tt.wantValue {
					t.Errorf("DN = %s, want %s", result.DN, tt.wantValue)
				}
			case "upn":
				if result.UserPrincipalName != tt.wantValue {
					t.Errorf("UserPrincipalName = %s, want %s", result.UserPrincipalName, tt.wantValue)
				}
			case "sam":
				if result.SAMAccountName != tt.wantValue {
					t.Errorf("SAMAccountName = %s, want %s", result.SAMAccountName, tt.wantValue)
				}
			case "sid":
				if result.SID != tt.wantValue {
					t.Errorf("SID = %s, want %s", result.SID, tt.wantValue)
				}
			}
		})
	}
}
