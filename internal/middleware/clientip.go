package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIPResolver picks the address a request is attributed to. Forwarding
// headers are honored only when the direct peer is a trusted proxy; otherwise
// the peer address from RemoteAddr is used as is.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// NewClientIPResolver accepts single addresses or CIDR ranges. Entries that
// do not parse are skipped with a warning; config validation rejects them
// earlier.
func NewClientIPResolver(proxies []string) *ClientIPResolver {
	resolver := &ClientIPResolver{}
	for _, raw := range proxies {
		prefix, err := ParseProxy(raw)
		if err != nil {
			slog.Warn("ignoring trusted proxy", "value", raw, "error", err)
			continue
		}
		resolver.trusted = append(resolver.trusted, prefix)
	}
	return resolver
}

// ParseProxy reads "10.0.0.7" or "10.0.0.0/8" as a prefix.
func ParseProxy(raw string) (netip.Prefix, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "/") {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("parse proxy range %q: %w", raw, err)
		}
		return prefix.Masked(), nil
	}

	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("parse proxy address %q: %w", raw, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (c *ClientIPResolver) trusts(addr netip.Addr) bool {
	if c == nil {
		return false
	}

	addr = addr.Unmap()
	for _, prefix := range c.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP walks X-Forwarded-For from the right and returns the first hop
// that is not a trusted proxy. A nil resolver trusts nobody.
func (c *ClientIPResolver) ClientIP(r *http.Request) string {
	peer := remoteHost(r)

	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !c.trusts(peerAddr) {
		return peer
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(header, ",")...)
	}

	leftmost := ""
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !c.trusts(hop) {
			return hop.Unmap().String()
		}
		leftmost = hop.Unmap().String()
	}
	if leftmost != "" {
		return leftmost
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}

	return peer
}

func remoteHost(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "unknown"
	}

	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	return remote
}
