package dispatch

import (
	"fmt"

	"github.com/modseven/dispatch/util"
)

const (
	defaultMaxCallbackDepth = 5
)

// defaultFollowHeaders are the request headers copied onto a follow request.
var defaultFollowHeaders = []string{"Authorization"}

// Config configures a dispatch client.
type Config struct {
	// Expose adds a User-Agent header identifying the library on external
	// requests.
	Expose bool `yaml:"expose" mapstructure:"expose"`

	// Driver names the external driver to use ("native" or "stream").
	// Empty selects the registered driver with the highest priority.
	Driver string `yaml:"driver" mapstructure:"driver" validate:"omitempty,oneof=native stream"`

	// Follow enables automatic redirect following.
	Follow bool `yaml:"follow" mapstructure:"follow"`

	// FollowHeaders are copied verbatim from the original request onto a
	// follow request; all other headers are dropped. Defaults to
	// {Authorization}.
	FollowHeaders []string `yaml:"follow_headers" mapstructure:"follow_headers"`

	// StrictRedirect preserves the request method on a 302 response per
	// RFC 7231 instead of downgrading to GET.
	StrictRedirect bool `yaml:"strict_redirect" mapstructure:"strict_redirect"`

	// MaxCallbackDepth bounds chained callback re-execution (redirect
	// chains). Defaults to 5.
	MaxCallbackDepth int `yaml:"max_callback_depth" mapstructure:"max_callback_depth" validate:"omitempty,min=1"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	c.MaxCallbackDepth = util.Coalesce(c.MaxCallbackDepth, defaultMaxCallbackDepth)
	if c.FollowHeaders == nil {
		c.FollowHeaders = append([]string(nil), defaultFollowHeaders...)
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxCallbackDepth < 1 {
		return fmt.Errorf("dispatch: max_callback_depth must be positive")
	}
	if c.Driver != "" && c.Driver != DriverNative && c.Driver != DriverStream {
		return fmt.Errorf("dispatch: unknown driver %q", c.Driver)
	}
	return nil
}
