package netlogon

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/isometry/go-activedirectory/internal/obslog"
)

// DefaultTimeout is the per-wave reply budget.
const DefaultTimeout = 2 * time.Second

// DefaultRetries is the number of resend waves.
const DefaultRetries = 3

const bufSize = 8192

// Target is one address to probe for a given domain.
type Target struct {
	Host string
	Port int
}

func (t Target) addr() string { return fmt.Sprintf("%s:%d", t.Host, t.Port) }

// Prober sends Netlogon pings over a single UDP socket, multiplexing many
// outstanding queries by message id and source address.
type Prober struct {
	Timeout time.Duration
	Retries int
}

// New returns a Prober with spec defaults.
func New() *Prober {
	return &Prober{Timeout: DefaultTimeout, Retries: DefaultRetries}
}

type pending struct {
	target Target
	domain string
	msgID  int64
}

// Probe queries every target for domain and returns all replies received
// within the retry/timeout budget. A transport error on an individual
// datagram never aborts the batch; only a fatal socket error does.
func (p *Prober) Probe(ctx context.Context, targets []Target, domain string) ([]*ProbeResult, error) {
	log := obslog.For("netlogon")
	if len(targets) == 0 {
		return nil, nil
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	retries := p.Retries
	if retries == 0 {
		retries = DefaultRetries
	}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("netlogon: open socket: %w", err)
	}
	defer conn.Close()

	localHost, _ := os.Hostname()

	pendingByAddr := make(map[string]*pending, len(targets))
	for _, t := range targets {
		ra, err := net.ResolveUDPAddr("udp", t.addr())
		if err != nil {
			log.Debug("resolve target failed", "target", t.addr(), "err", err)
			continue
		}
		pendingByAddr[ra.String()] = &pending{target: t, domain: domain}
	}

	var results []*ProbeResult

	for round := 0; round <= retries; round++ {
		if len(pendingByAddr) == 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		waveStart := time.Now()
		for addr, pend := range pendingByAddr {
			pend.msgID = rand.Int63n(1<<31 - 1)
			query, err := BuildQuery(pend.domain, localHost, pend.msgID)
			if err != nil {
				log.Debug("build query failed", "err", err)
				continue
			}
			ra, err := net.ResolveUDPAddr("udp", addr)
			if err != nil {
				continue
			}
			if _, err := conn.WriteToUDP(query, ra); err != nil {
				log.Debug("send failed", "addr", addr, "err", err)
			}
		}

		replies, err := p.waitForReplies(conn, pendingByAddr, timeout, waveStart)
		if err != nil {
			return results, err
		}
		results = append(results, replies...)
	}

	return results, nil
}

func (p *Prober) waitForReplies(conn *net.UDPConn, pendingByAddr map[string]*pending, timeout time.Duration, waveStart time.Time) ([]*ProbeResult, error) {
	log := obslog.For("netlogon")
	var results []*ProbeResult
	deadline := time.Now().Add(timeout)
	buf := make([]byte, bufSize)

	for len(pendingByAddr) > 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		conn.SetReadDeadline(time.Now().Add(remaining))
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, syscall.EINTR) {
				continue
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				break
			}
			return results, fmt.Errorf("netlogon: socket error: %w", err)
		}

		pend, ok := pendingByAddr[raddr.String()]
		if !ok {
			continue // unmatched datagram, silently dropped
		}

		msgID, blob, err := DecodeReplyMessage(buf[:n])
		if err != nil {
			log.Debug("malformed datagram dropped", "addr", raddr.String(), "err", err)
			continue
		}
		if msgID != pend.msgID {
			continue // stray/old reply
		}
		delete(pendingByAddr, raddr.String())

		reply, err := DecodeReply(blob)
		if err != nil {
			log.Debug("malformed netlogon reply dropped", "addr", raddr.String(), "err", err)
			continue
		}

		results = append(results, &ProbeResult{
			Reply:   reply,
			Host:    pend.target.Host,
			Port:    pend.target.Port,
			Domain:  pend.domain,
			Address: raddr.String(),
			MsgID:   pend.msgID,
			RTT:     time.Since(waveStart),
		})
	}
	return results, nil
}
