package addn

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// GUIDLength is the byte length of an AD objectGUID.
const GUIDLength = 16

var (
	hyphenatedGUID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	compactGUID    = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)
)

// NormalizeGUID returns guidString in canonical lower-case hyphenated form.
func NormalizeGUID(guidString string) (string, error) {
	guidString = strings.TrimSpace(guidString)
	switch {
	case hyphenatedGUID.MatchString(guidString):
		return strings.ToLower(guidString), nil
	case compactGUID.MatchString(guidString):
		s := strings.ToLower(guidString)
		return fmt.Sprintf("%s-%s-%s-%s-%s", s[0:8], s[8:12], s[12:16], s[16:20], s[20:32]), nil
	default:
		return "", fmt.Errorf("invalid GUID format: %s", guidString)
	}
}

// DecodeObjectGUID converts the 16 mixed-endian bytes AD stores as
// objectGUID (and the Netlogon reply's domain_guid field) into the
// standard hyphenated string form. Data1/Data2/Data3 are stored
// little-endian and byte-reversed here; Data4 is stored as-is.
func DecodeObjectGUID(guid []byte) (string, error) {
	if len(guid) != GUIDLength {
		return "", fmt.Errorf("invalid GUID byte length: expected %d, got %d", GUIDLength, len(guid))
	}
	std := make([]byte, GUIDLength)
	std[0], std[1], std[2], std[3] = guid[3], guid[2], guid[1], guid[0]
	std[4], std[5] = guid[5], guid[4]
	std[6], std[7] = guid[7], guid[6]
	copy(std[8:], guid[8:])
	h := hex.EncodeToString(std)
	return fmt.Sprintf("%s-%s-%s-%s-%s", h[0:8], h[8:12], h[12:16], h[16:20], h[20:32]), nil
}

// EncodeObjectGUID is the inverse of DecodeObjectGUID.
func EncodeObjectGUID(guidString string) ([]byte, error) {
	norm, err := NormalizeGUID(guidString)
	if err != nil {
		return nil, err
	}
	raw, err := hex.DecodeString(strings.ReplaceAll(norm, "-", ""))
	if err != nil {
		return nil, fmt.Errorf("decode GUID hex: %w", err)
	}
	if len(raw) != GUIDLength {
		return nil, fmt.Errorf("invalid GUID byte length: %d", len(raw))
	}
	out := make([]byte, GUIDLength)
	out[0], out[1], out[2], out[3] = raw[3], raw[2], raw[1], raw[0]
	out[4], out[5] = raw[5], raw[4]
	out[6], out[7] = raw[7], raw[6]
	copy(out[8:], raw[8:])
	return out, nil
}
