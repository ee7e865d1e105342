package adldap

import (
	"context"
	"testing"
)

func TestAddRejectsEmptyDN(t *testing.T) {
	c := newTestClient("example.com")

	tests := []*AddRequest{nil, {DN: ""}}
	for _, req := range tests {
		err := c.Add(context.Background(), req)
		if err == nil {
			t.Fatalf("expected an error for request %+v", req)
		}
		if kind, ok := KindOf(err); !ok || kind != KindConfig {
			t.Errorf("expected KindConfig, got %v", err)
		}
	}
}

func TestModifyRejectsEmptyDN(t *testing.T) {
	c := newTestClient("example.com")

	tests := []*ModifyRequest{nil, {DN: ""}}
	for _, req := range tests {
		err := c.Modify(context.Background(), req)
		if err == nil {
			t.Fatalf("expected an error for request %+v", req)
		}
		if kind, ok := KindOf(err); !ok || kind != KindConfig {
			t.Errorf("expected KindConfig, got %v", err)
		}
	}
}

func TestDeleteRejectsEmptyDN(t *testing.T) {
	c := newTestClient("example.com")

	err := c.Delete(context.Background(), "")
	if err == nil {
		t.Fatal("expected an error for an empty dn")
	}
	if kind, ok := KindOf(err); !ok || kind != KindConfig {
		t.Errorf("expected KindConfig, got %v", err)
	}
}

func TestRenameRejectsMissingDNOrRDN(t *testing.T) {
	c := newTestClient("example.com")

	tests := []*RenameRequest{
		nil,
		{DN: "", NewRDN: "CN=x"},
		{DN: "CN=x,DC=example,DC=com", NewRDN: ""},
	}
	for _, req := range tests {
		err := c.Rename(context.Background(), req)
		if err == nil {
			t.Fatalf("expected an error for request %+v", req)
		}
		if kind, ok := KindOf(err); !ok || kind != KindConfig {
			t.Errorf("expected KindConfig, got %v", err)
		}
	}
}
