package locator

import "time"

// URLTransformer rewrites an endpoint's URL after freshness validation but
// before an endpoint list is handed back to the caller — for example, to
// route .onion addresses through a local SOCKS proxy.
type URLTransformer func(Endpoint) Endpoint

// Options configures a Resolver or Publisher. The zero value is not
// usable directly; construct one from DefaultConfig or LoadConfig and
// override only what you need.
type Options struct {
	BootstrapRelays []string
	Timeout         time.Duration
	Pool            RelayPool
	URLTransformer  URLTransformer
	Strict          bool
	Gossip          bool
	PrivateLocator  bool
	QueryLimit      int
	KeyCodec        KeyCodec
	CacheCapacity   int
	RateLimitRPS    float64
	RateLimitBurst  int
}

// OptionsFromConfig builds Options from a Config, leaving Pool, KeyCodec,
// and URLTransformer for the caller to fill in.
func OptionsFromConfig(cfg Config) Options {
	return Options{
		BootstrapRelays: cfg.BootstrapRelays,
		Timeout:         cfg.Timeout,
		Strict:          cfg.Strict,
		Gossip:          cfg.Gossip,
		QueryLimit:      cfg.QueryLimit,
		RateLimitRPS:    cfg.RateLimitRPS,
		RateLimitBurst:  cfg.RateLimitBurst,
	}
}

// withDefaults fills in zero-valued fields. defaultTimeout is the
// operation-specific fallback for Timeout: NewResolver and NewPublisher
// pass different values since spec §6 mandates distinct resolve/publish
// defaults.
func (o Options) withDefaults(defaultTimeout time.Duration) Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.QueryLimit <= 0 {
		o.QueryLimit = DefaultConfig().QueryLimit
	}
	if o.KeyCodec == nil {
		o.KeyCodec = DefaultKeyCodec
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = defaultCacheCapacity
	}
	return o
}
