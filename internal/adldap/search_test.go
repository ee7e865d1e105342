package adldap

import (
	"context"
	"testing"
)

func TestSearchRejectsNilRequest(t *testing.T) {
	c := newTestClient("example.com")

	_, err := c.Search(context.Background(), nil)
	if err == nil {
		t.Fatal("expected an error for a nil search request")
	}
	if kind, ok := KindOf(err); !ok || kind != KindConfig {
		t.Errorf("expected KindConfig, got %v", err)
	}
}
