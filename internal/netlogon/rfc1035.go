package netlogon

import (
	"fmt"
	"strings"
)

// decodeRFC1035 decompresses an RFC 1035 §4.1.4 compressed name starting at
// offset in buf, returning the dotted name and the offset just past it
// (before following any pointer). visited tracks pointer targets already
// followed in this call chain to reject cyclic pointers.
func decodeRFC1035(buf []byte, offset int, visited map[int]bool) (string, int, error) {
	if visited == nil {
		visited = make(map[int]bool)
	}
	var labels []string
	pos := offset
	for {
		if pos >= len(buf) {
			return "", 0, fmt.Errorf("rfc1035: premature end of input")
		}
		tag := buf[pos]
		switch {
		case tag == 0:
			pos++
			return strings.Join(labels, "."), pos, nil
		case tag&0xc0 == 0xc0:
			if pos+1 >= len(buf) {
				return "", 0, fmt.Errorf("rfc1035: truncated pointer")
			}
			ptr := (int(tag&^0xc0) << 8) + int(buf[pos+1])
			if ptr >= len(buf) {
				return "", 0, fmt.Errorf("rfc1035: pointer past end of buffer")
			}
			if visited[ptr] {
				return "", 0, fmt.Errorf("rfc1035: cyclic pointer")
			}
			visited[ptr] = true
			rest, _, err := decodeRFC1035(buf, ptr, visited)
			if err != nil {
				return "", 0, err
			}
			labels = append(labels, rest)
			pos += 2
			return strings.Join(labels, "."), pos, nil
		case tag&0xc0 != 0:
			return "", 0, fmt.Errorf("rfc1035: illegal tag %#x", tag)
		default:
			length := int(tag)
			pos++
			if pos+length > len(buf) {
				return "", 0, fmt.Errorf("rfc1035: premature end of input")
			}
			labels = append(labels, string(buf[pos:pos+length]))
			pos += length
		}
	}
}

// encodeRFC1035 encodes name (dot-separated labels, no compression) in the
// length-prefixed label form, terminated by a zero label.
func encodeRFC1035(name string) ([]byte, error) {
	if name == "" {
		return []byte{0}, nil
	}
	var out []byte
	for _, label := range strings.Split(name, ".") {
		if len(label) > 63 {
			return nil, fmt.Errorf("rfc1035: label %q too long", label)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	return out, nil
}
