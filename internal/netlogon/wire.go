package netlogon

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/go-ldap/ldap/v3"
)

// NtVer value the spec's CLDAP query hard-codes: \06\00\00\00 (NETLOGON_NT_VERSION_5EX).
var ntVer = string([]byte{6, 0, 0, 0})

// BuildQuery encodes the CLDAP SearchRequest LDAPMessage for a Netlogon
// ping: scope base, empty base DN, filter
// (&(DnsDomain=<domain>)(Host=<host>)(NtVer=\06\00\00\00)), attribute
// "Netlogon". msgID must be echoed by the reply.
func BuildQuery(domain, host string, msgID int64) ([]byte, error) {
	filterStr := fmt.Sprintf("(&(DnsDomain=%s)(Host=%s)(NtVer=%s))",
		ldap.EscapeFilter(domain), ldap.EscapeFilter(host), ldap.EscapeFilter(ntVer))
	filterPacket, err := ldap.CompileFilter(filterStr)
	if err != nil {
		return nil, fmt.Errorf("netlogon: compile filter: %w", err)
	}

	envelope := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "LDAPMessage")
	envelope.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, msgID, "MessageID"))

	req := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ber.ApplicationSearchRequest, nil, "SearchRequest")
	req.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "", "BaseDN"))
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(ldap.ScopeBaseObject), "Scope"))
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, int64(ldap.NeverDerefAliases), "DerefAliases"))
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, 0, "SizeLimit"))
	req.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, 0, "TimeLimit"))
	req.AppendChild(ber.NewBoolean(ber.ClassUniversal, ber.TypePrimitive, ber.TagBoolean, false, "TypesOnly"))
	req.AppendChild(filterPacket)

	attrs := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Attributes")
	attrs.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, "Netlogon", "AttributeDescription"))
	req.AppendChild(attrs)

	envelope.AppendChild(req)
	return envelope.Bytes(), nil
}

// DecodeReplyMessage unwraps an LDAPMessage containing a SearchResultEntry
// (or, in the typical pre-authentication CLDAP case, a single entry
// followed by nothing — the caller only cares about the Netlogon
// attribute), returning the echoed message id and the raw Netlogon blob.
func DecodeReplyMessage(data []byte) (msgID int64, netlogonBlob []byte, err error) {
	packet, err := ber.DecodePacketErr(data)
	if err != nil {
		return 0, nil, fmt.Errorf("netlogon: decode ber: %w", err)
	}
	if len(packet.Children) < 2 {
		return 0, nil, fmt.Errorf("netlogon: malformed LDAPMessage")
	}
	id, ok := packet.Children[0].Value.(int64)
	if !ok {
		return 0, nil, fmt.Errorf("netlogon: malformed message id")
	}
	protocolOp := packet.Children[1]
	if protocolOp.Tag != ber.ApplicationSearchResultEntry {
		return 0, nil, fmt.Errorf("netlogon: unexpected protocol op %d", protocolOp.Tag)
	}
	if len(protocolOp.Children) < 2 {
		return 0, nil, fmt.Errorf("netlogon: malformed SearchResultEntry")
	}
	for _, attrSeq := range protocolOp.Children[1].Children {
		if len(attrSeq.Children) < 2 {
			continue
		}
		name, _ := attrSeq.Children[0].Value.(string)
		if name != "Netlogon" && name != "netlogon" {
			continue
		}
		vals := attrSeq.Children[1]
		if len(vals.Children) == 0 {
			continue
		}
		return id, vals.Children[0].Data.Bytes(), nil
	}
	return 0, nil, fmt.Errorf("netlogon: no Netlogon attribute in reply")
}

// DecodeReply parses the Netlogon binary blob (as carried in the
// SearchResultEntry's Netlogon attribute) into a Reply.
func DecodeReply(blob []byte) (*Reply, error) {
	if len(blob) < 8+16 {
		return nil, fmt.Errorf("netlogon: reply too short")
	}
	opType := decodeUint32LE(blob[0:4])
	flags := decodeUint32LE(blob[4:8])
	var guid [16]byte
	copy(guid[:], blob[8:24])

	offset := 24
	fields := make([]string, 8)
	for i := range fields {
		s, next, err := decodeRFC1035(blob, offset, nil)
		if err != nil {
			return nil, fmt.Errorf("netlogon: decode field %d: %w", i, err)
		}
		fields[i] = s
		offset = next
	}

	return &Reply{
		OpType:          opType,
		Flags:           flags,
		DomainGUID:      guid,
		Forest:          fields[0],
		Domain:          fields[1],
		Hostname:        fields[2],
		NetBIOSDomain:   fields[3],
		NetBIOSHostname: fields[4],
		User:            fields[5],
		ClientSite:      fields[6],
		ServerSite:      fields[7],
	}, nil
}

func decodeUint32LE(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
