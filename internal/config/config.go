// Package config holds the runtime settings for the editor binary.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
)

const (
	ModeDesktop = "desktop"
	ModeServe   = "serve"

	Port = 8888
)

type Config struct {
	Mode string
	// Addr is the interface serve mode listens on; empty means all.
	Addr      string
	Port      int
	OutputDir string
	Advertise bool
	Discover  bool
	Quiet     bool

	LayerWidthEstimate  float64
	LayerHeightEstimate float64
	DuplicateOffset     float64
}

func Default() Config {
	return Config{
		Mode:                ModeDesktop,
		Port:                Port,
		OutputDir:           "overlays",
		LayerWidthEstimate:  100,
		LayerHeightEstimate: 50,
		DuplicateOffset:     20,
	}
}

// RegisterFlags binds every field to fs, using the current values as
// defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Mode, "mode", c.Mode, "surface to run: desktop or serve")
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address for serve mode")
	fs.IntVar(&c.Port, "port", c.Port, "listen port for serve mode")
	fs.StringVar(&c.OutputDir, "out", c.OutputDir, "directory for applied overlay PDFs")
	fs.BoolVar(&c.Advertise, "mdns", c.Advertise, "advertise the serve endpoint over mDNS")
	fs.BoolVar(&c.Discover, "discover", c.Discover, "list editors advertised on the LAN and exit")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "disable logging")
	fs.Float64Var(&c.LayerWidthEstimate, "layer-width", c.LayerWidthEstimate, "layer width used when clamping drags")
	fs.Float64Var(&c.LayerHeightEstimate, "layer-height", c.LayerHeightEstimate, "layer height used when clamping drags")
	fs.Float64Var(&c.DuplicateOffset, "duplicate-offset", c.DuplicateOffset, "offset applied to duplicated layers")
}

// FromEnv overlays OVERLAY_* environment variables onto c. getenv is
// usually os.Getenv.
func (c *Config) FromEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("OVERLAY_ADDR"); v != "" {
		host, port, err := net.SplitHostPort(v)
		if err != nil {
			return fmt.Errorf("OVERLAY_ADDR: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("OVERLAY_ADDR port: %w", err)
		}
		c.Addr, c.Port = host, p
	}
	if v := getenv("OVERLAY_OUT"); v != "" {
		c.OutputDir = v
	}
	for name, dst := range map[string]*bool{"OVERLAY_MDNS": &c.Advertise, "OVERLAY_QUIET": &c.Quiet} {
		v := getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Mode != ModeDesktop && c.Mode != ModeServe {
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.LayerWidthEstimate <= 0 || c.LayerHeightEstimate <= 0 {
		errs = append(errs, errors.New("layer size estimates must be positive"))
	}
	if c.DuplicateOffset < 0 {
		errs = append(errs, errors.New("duplicate offset must not be negative"))
	}
	return errors.Join(errs...)
}

// ListenAddr is the host:port serve mode binds to.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}
