package adldap

import (
	"context"
	"testing"
)

func TestQualifyPrincipal(t *testing.T) {
	c := newTestClient("example.com")

	tests := []struct {
		name          string
		principal     string
		wantQualified string
		wantRealm     string
	}{
		{"bare user gets home realm", "jdoe", "jdoe@EXAMPLE.COM", "EXAMPLE.COM"},
		{"already-qualified principal keeps its realm", "jdoe@OTHER.COM", "jdoe@OTHER.COM", "OTHER.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qualified, realm := c.qualifyPrincipal(tt.principal)
			if qualified != tt.wantQualified {
				t.Errorf("qualified = %s, want %s", qualified, tt.wantQualified)
			}
			if realm != tt.wantRealm {
				t.Errorf("realm = %s, want %s", realm, tt.wantRealm)
			}
		})
	}
}

func TestSetPasswordRequiresActiveCredentials(t *testing.T) {
	c := newTestClient("example.com")

	err := c.SetPassword(context.Background(), "jdoe", "NewPass123!", "")
	if err == nil {
		t.Fatal("expected an error with no credentials acquired in the sandbox")
	}
	if kind, ok := KindOf(err); !ok || kind != KindAuth {
		t.Errorf("expected KindAuth, got %v", err)
	}
}

func TestChangePasswordRequiresActiveCredentials(t *testing.T) {
	c := newTestClient("example.com")

	err := c.ChangePassword(context.Background(), "NewPass123!", "")
	if err == nil {
		t.Fatal("expected an error with no credentials acquired in the sandbox")
	}
	if kind, ok := KindOf(err); !ok || kind != KindAuth {
		t.Errorf("expected KindAuth, got %v", err)
	}
}
