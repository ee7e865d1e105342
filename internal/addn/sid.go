package addn

import (
	"fmt"

	"github.com/bwmarrin/go-objectsid"
)

// DecodeObjectSID converts the binary objectSid attribute AD returns into
// its string form ("S-1-5-21-...").
func DecodeObjectSID(binarySID []byte) (string, error) {
	if len(binarySID) == 0 {
		return "", fmt.Errorf("binary SID cannot be empty")
	}
	sid := objectsid.Decode(binarySID)
	return sid.String(), nil
}
