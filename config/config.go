// Package config loads the forwarder's startup configuration: the
// device to bind and the backend pool in RR_TARGET_IPS, plus the
// ambient tunables left as implementation choices. It builds
// the prepopulated consistent-hash table, since Config's contract is to
// be immutable and fully usable once constructed.
//
// Functional options plus a LoadConfig(*viper.Viper) option and a
// creasty/defaults pass for fields the caller leaves zero: the two
// required env vars (device, target IPs) are semicolon-split and the
// lookup table is populated on construct, so a Config is immediately
// usable once New returns.
package config

import (
	"net"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"

	"github.com/rbcollins/maglevrail/chash"
	"github.com/rbcollins/maglevrail/railerr"
	iviper "github.com/rbcollins/maglevrail/x/viper"
)

// Config is the forwarder's startup configuration. Immutable after
// construction: New is the only place that ever mutates a Config.
type Config struct {
	Device       string `mapstructure:"device"`
	TargetIPsRaw string `mapstructure:"target_ips"`

	// ARPTTL, PollTimeout and OversizeFactor are ambient tunables that
	// would otherwise be baked in as constants (30s, 1s, 100); they are
	// exposed here as defaulted, not hardcoded, so every one of those
	// values is overridable without a code change.
	ARPTTL         time.Duration `mapstructure:"arp_ttl" default:"30s"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout" default:"1s"`
	OversizeFactor uint32        `mapstructure:"oversize_factor" default:"100"`

	// HealthCheckPort is the TCP port the backend liveness observer
	// probes on each target (an ambient, observability-only concern:
	// see health_monitor's package doc for why it never feeds back into
	// Routes).
	HealthCheckPort int `mapstructure:"health_check_port" default:"80"`

	// TargetIPs and Routes are derived from TargetIPsRaw by New; they
	// are not meant to be set directly by an Option.
	TargetIPs []net.IP
	Routes    *chash.Table
}

// Option mutates a Config under construction.
type Option func(*Config) error

// LoadConfig decodes v's bound keys into the Config using the project's
// x/viper.Unmarshal (duration/byte-size/URL decode hooks).
func LoadConfig(v *viper.Viper) Option {
	return func(c *Config) error {
		return iviper.Unmarshal(v, c)
	}
}

// WithDevice overrides the interface name directly (bypassing env/viper
// loading); useful for tests.
func WithDevice(name string) Option {
	return func(c *Config) error {
		c.Device = name
		return nil
	}
}

// WithTargetIPs overrides the semicolon-separated target list directly.
func WithTargetIPs(raw string) Option {
	return func(c *Config) error {
		c.TargetIPsRaw = raw
		return nil
	}
}

// NewViper builds a *viper.Viper bound to the two required environment
// variables (RR_DEVICE, RR_TARGET_IPS) and the ambient tunable
// overrides (RR_ARP_TTL, RR_POLL_TIMEOUT, RR_OVERSIZE_FACTOR,
// RR_HEALTH_CHECK_PORT).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("RR")
	v.AutomaticEnv()
	_ = v.BindEnv("device", "RR_DEVICE")
	_ = v.BindEnv("target_ips", "RR_TARGET_IPS")
	_ = v.BindEnv("arp_ttl", "RR_ARP_TTL")
	_ = v.BindEnv("poll_timeout", "RR_POLL_TIMEOUT")
	_ = v.BindEnv("oversize_factor", "RR_OVERSIZE_FACTOR")
	_ = v.BindEnv("health_check_port", "RR_HEALTH_CHECK_PORT")
	return v
}

// FromEnv loads configuration from the process environment, per the
// RR_DEVICE/RR_TARGET_IPS contract.
func FromEnv() (*Config, error) {
	return New(LoadConfig(NewViper()))
}

// New applies opts in order, fills any remaining zero-valued ambient
// tunables from their struct-tag defaults, validates the two required
// fields, and builds the populated consistent-hash table from
// TargetIPsRaw.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, railerr.Wrap(railerr.Config, "apply option", err)
		}
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, railerr.Wrap(railerr.Config, "apply defaults", err)
	}

	if cfg.Device == "" {
		return nil, railerr.New(railerr.Config, "RR_DEVICE is required")
	}
	if cfg.TargetIPsRaw == "" {
		return nil, railerr.New(railerr.Config, "RR_TARGET_IPS is required")
	}

	names := strings.Split(cfg.TargetIPsRaw, ";")
	routes := chash.NewTable()
	routes.OversizeFactor = cfg.OversizeFactor

	cfg.TargetIPs = make([]net.IP, 0, len(names))
	for _, name := range names {
		ip := net.ParseIP(name).To4()
		if ip == nil {
			return nil, railerr.New(railerr.Config, "RR_TARGET_IPS: invalid IPv4 address "+name)
		}
		cfg.TargetIPs = append(cfg.TargetIPs, ip)
		routes.Add(chash.NewBackend(name, ip))
	}
	routes.Populate()
	cfg.Routes = routes

	return cfg, nil
}
