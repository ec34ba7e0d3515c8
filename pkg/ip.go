package pkg

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedProxies are the peers allowed to report the client address through
// X-Real-Ip and X-Forwarded-For.
type TrustedProxies []*net.IPNet

// ParseTrustedProxies accepts single IPs and CIDR ranges.
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q is not an ip", entry)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip, bits = ip4, 8*net.IPv4len
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", entry, err)
		}
		proxies = append(proxies, ipNet)
	}
	return proxies, nil
}

func (tp TrustedProxies) trusts(ip net.IP) bool {
	for _, ipNet := range tp {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// ReadUserIP returns the client IP. Forwarding headers are only honoured when
// the direct peer is a trusted proxy, otherwise the peer address is the client.
func ReadUserIP(r *http.Request, trusted TrustedProxies) (string, error) {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	peerIP := net.ParseIP(peer)
	if peerIP == nil {
		return "", fmt.Errorf("ip addr %s is invalid", peer)
	}

	if !trusted.trusts(peerIP) {
		return peerIP.String(), nil
	}

	if realIP := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-Ip"))); realIP != nil {
		return realIP.String(), nil
	}

	// walk the chain from the nearest hop, the first untrusted entry is the client
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hopIP := net.ParseIP(strings.TrimSpace(hops[i]))
		if hopIP == nil {
			break
		}
		if !trusted.trusts(hopIP) {
			return hopIP.String(), nil
		}
	}

	return peerIP.String(), nil
}
