package netlogon

import "testing"

func encodeLabels(labels ...string) []byte {
	var out []byte
	for _, l := range labels {
		out = append(out, byte(len(l)))
		out = append(out, l...)
	}
	out = append(out, 0)
	return out
}

func TestDecodeRFC1035_PlainName(t *testing.T) {
	buf := encodeLabels("dc01", "example", "com")
	name, next, err := decodeRFC1035(buf, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "dc01.example.com" {
		t.Fatalf("got %q", name)
	}
	if next != len(buf) {
		t.Fatalf("expected offset %d, got %d", len(buf), next)
	}
}

func TestDecodeRFC1035_Pointer(t *testing.T) {
	tail := encodeLabels("example", "com")
	buf := append([]byte{}, tail...)
	buf = append(buf, 4, 'd', 'c', '0', '1', 0xc0, 0x00)
	name, _, err := decodeRFC1035(buf, len(tail), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "dc01.example.com" {
		t.Fatalf("got %q", name)
	}
}

func TestDecodeRFC1035_RejectsCycle(t *testing.T) {
	buf := []byte{0xc0, 0x00} // points at itself
	_, _, err := decodeRFC1035(buf, 0, nil)
	if err == nil {
		t.Fatal("expected cyclic pointer error")
	}
}

func TestDecodeRFC1035_RejectsReservedTag(t *testing.T) {
	buf := []byte{0x40, 'a', 0} // top bits "01", reserved
	_, _, err := decodeRFC1035(buf, 0, nil)
	if err == nil {
		t.Fatal("expected illegal tag error")
	}
}

func TestDecodeRFC1035_RejectsForwardPointerPastBuffer(t *testing.T) {
	buf := []byte{0xff, 0xff}
	_, _, err := decodeRFC1035(buf, 0, nil)
	if err == nil {
		t.Fatal("expected pointer-past-end error")
	}
}

func TestDecodeRFC1035_RejectsTruncation(t *testing.T) {
	buf := []byte{5, 'a', 'b'} // claims 5 bytes, only 2 present
	_, _, err := decodeRFC1035(buf, 0, nil)
	if err == nil {
		t.Fatal("expected truncation error")
	}
}

func TestEncodeDecodeRFC1035_RoundTrip(t *testing.T) {
	names := []string{"dc01.example.com", "example.com", ""}
	for _, n := range names {
		enc, err := encodeRFC1035(n)
		if err != nil {
			t.Fatalf("encode %q: %v", n, err)
		}
		dec, _, err := decodeRFC1035(enc, 0, nil)
		if err != nil {
			t.Fatalf("decode %q: %v", n, err)
		}
		if dec != n {
			t.Fatalf("round trip mismatch: want %q, got %q", n, dec)
		}
	}
}
