package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"ubigeo-api/internal/logger"
)

// 文档注释：来源 IP 白名单（单 IP 或 CIDR，支持 IPv4/IPv6）
// 背景：管理端与指标端点只对运维网段开放；与 ADMIN_TOKEN 叠加使用。
// 约束：条目为空时不做限制；来源 IP 默认取 RemoteAddr，配置 realIPHeader 时取该头的首个有效 IP。
type Allowlist struct {
	ips          map[string]struct{}
	cidrs        []*net.IPNet
	realIPHeader string
}

// NewAllowlist：解析条目；任一条目既不是 IP 也不是 CIDR 时返回错误
func NewAllowlist(entries []string, realIPHeader string) (*Allowlist, error) {
	a := &Allowlist{ips: map[string]struct{}{}, realIPHeader: strings.TrimSpace(realIPHeader)}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			_, n, err := net.ParseCIDR(e)
			if err != nil {
				return nil, fmt.Errorf("allowlist: bad cidr %q: %w", e, err)
			}
			a.cidrs = append(a.cidrs, n)
			continue
		}
		ip := net.ParseIP(e)
		if ip == nil {
			return nil, fmt.Errorf("allowlist: bad ip %q", e)
		}
		a.ips[ip.String()] = struct{}{}
	}
	return a, nil
}

// Empty：未配置任何条目
func (a *Allowlist) Empty() bool { return len(a.ips) == 0 && len(a.cidrs) == 0 }

// Wrap：生成 http.Handler 中间件；拒绝时返回 403 JSON
func (a *Allowlist) Wrap(next http.Handler) http.Handler {
	if a.Empty() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := a.extractIP(r)
		if ip != nil && a.allowed(ip) {
			next.ServeHTTP(w, r)
			return
		}
		logger.L().Debug("allowlist_block", "ip", r.RemoteAddr, "path", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden","kind":"forbidden"}`))
	})
}

func (a *Allowlist) allowed(ip net.IP) bool {
	if _, ok := a.ips[ip.String()]; ok {
		return true
	}
	for _, n := range a.cidrs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// extractIP：解析请求来源 IP；优先指定头的首个有效 IP
func (a *Allowlist) extractIP(r *http.Request) net.IP {
	if a.realIPHeader != "" {
		if raw := r.Header.Get(a.realIPHeader); raw != "" {
			first := strings.TrimSpace(strings.Split(raw, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				return ip
			}
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
