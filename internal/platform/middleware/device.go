package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/mssola/useragent"

	"visitreg/pkg/requestcontext"
)

// ClientMetadata stores the caller's IP, User-Agent and parsed device
// summary. Forwarding headers are only believed from trusted peers.
func ClientMetadata(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("User-Agent")
			ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r, trusted), raw)
			ctx = requestcontext.WithDevice(ctx, ParseDevice(raw))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ParseDevice summarises a User-Agent header.
func ParseDevice(raw string) requestcontext.Device {
	if raw == "" {
		return requestcontext.Device{}
	}
	ua := useragent.New(raw)
	browser, version := ua.Browser()
	if version != "" {
		browser = browser + " " + version
	}
	return requestcontext.Device{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// ClientIPFromRequest returns the socket peer unless that peer is a trusted
// proxy. Behind one, X-Forwarded-For is walked right to left and the first
// hop that is not itself a trusted proxy wins; X-Real-IP is the fallback.
func ClientIPFromRequest(r *http.Request, trusted []netip.Prefix) string {
	peer, ok := parseAddr(r.RemoteAddr)
	if !ok {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	if !isTrusted(peer, trusted) {
		return peer.String()
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, ok := parseAddr(strings.TrimSpace(hops[i]))
			if !ok {
				break
			}
			if !isTrusted(hop, trusted) {
				return hop.String()
			}
		}
	}
	if xri, ok := parseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ok {
		return xri.String()
	}
	return peer.String()
}

// parseAddr accepts "ip", "ip:port" and "[ipv6]:port".
func parseAddr(raw string) (netip.Addr, bool) {
	if raw == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
