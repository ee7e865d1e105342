// Package netlogon implements the CLDAP/Netlogon prober: it sends a
// Netlogon ping wrapped in a connectionless LDAP search request over UDP
// and decodes the fixed binary reply.
package netlogon

import "time"

// Flag bits in a Netlogon reply's flags field.
const (
	FlagPDC          uint32 = 0x1
	FlagGC           uint32 = 0x4
	FlagLDAP         uint32 = 0x8
	FlagDS           uint32 = 0x10
	FlagKDC          uint32 = 0x20
	FlagTimeserv     uint32 = 0x40
	FlagClosest      uint32 = 0x80
	FlagWritable     uint32 = 0x100
	FlagGoodTimeserv uint32 = 0x200
)

// Reply is a decoded Netlogon binary blob.
type Reply struct {
	OpType          uint32
	Flags           uint32
	DomainGUID      [16]byte
	Forest          string
	Domain          string
	Hostname        string
	NetBIOSDomain   string
	NetBIOSHostname string
	User            string
	ClientSite      string
	ServerSite      string
}

// HasFlag reports whether all bits of mask are set in the reply's flags.
func (r *Reply) HasFlag(mask uint32) bool {
	return r.Flags&mask == mask
}

// ProbeResult augments a decoded Reply with the bookkeeping the prober
// attaches: which address was probed and how long the reply took.
type ProbeResult struct {
	Reply   *Reply
	Host    string
	Port    int
	Domain  string
	Address string
	MsgID   int64
	RTT     time.Duration
}
