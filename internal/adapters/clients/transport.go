package clients

import (
	"cmp"
	"net/http"
	"time"

	"github.com/jsamuelsen/shrutam/internal/platform/config"
)

// Pool defaults for unset TransportConfig fields.
const (
	transportMaxIdleConns        = 100
	transportMaxIdleConnsPerHost = 10
	transportIdleConnTimeout     = 90 * time.Second
)

func newTransport(cfg config.TransportConfig) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        positiveOr(cfg.MaxIdleConns, transportMaxIdleConns),
		MaxIdleConnsPerHost: positiveOr(cfg.MaxIdleConnsPerHost, transportMaxIdleConnsPerHost),
		IdleConnTimeout:     positiveOr(cfg.IdleConnTimeout, transportIdleConnTimeout),
	}
}

func positiveOr[T cmp.Ordered](v, def T) T {
	var zero T
	if v <= zero {
		return def
	}

	return v
}
