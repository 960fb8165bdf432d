package supervisor

import (
	"fmt"
	"time"
)

// Options configures lifecycle timings and call behavior for a Supervisor.
// NewOptions should be used to create instances of Options.
type Options struct {
	// SettleDelay is how long to wait after spawning before probing the
	// process, giving it a moment to initialize.
	SettleDelay time.Duration

	// PingTimeout bounds the best-effort readiness ping.
	PingTimeout time.Duration

	// DiscoveryTimeout bounds capability discovery calls (tools/resources/prompts).
	DiscoveryTimeout time.Duration

	// CallTimeout bounds tool calls and other caller-initiated exchanges.
	CallTimeout time.Duration

	// StopGrace is how long a server gets between the graceful terminate
	// call and the forced kill.
	StopGrace time.Duration

	// RestartGap is the settling delay between the stop and start halves of
	// a restart.
	RestartGap time.Duration

	// ValidateToolArgs enables validation of tool call arguments against the
	// tool's discovered input schema before dispatch.
	ValidateToolArgs bool
}

// Option is a functional option for configuring a Supervisor.
type Option func(*Options) error

// NewOptions returns defaults with the provided options applied on top.
func NewOptions(opt ...Option) (Options, error) {
	opts := defaultOptions()
	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

func defaultOptions() Options {
	return Options{
		SettleDelay:      300 * time.Millisecond,
		PingTimeout:      2 * time.Second,
		DiscoveryTimeout: 10 * time.Second,
		CallTimeout:      30 * time.Second,
		StopGrace:        100 * time.Millisecond,
		RestartGap:       200 * time.Millisecond,
		ValidateToolArgs: true,
	}
}

// WithSettleDelay sets the post-spawn settling delay.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return fmt.Errorf("settle delay cannot be negative")
		}
		o.SettleDelay = d
		return nil
	}
}

// WithDiscoveryTimeout sets the timeout for capability discovery calls.
func WithDiscoveryTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("discovery timeout must be positive")
		}
		o.DiscoveryTimeout = d
		return nil
	}
}

// WithCallTimeout sets the timeout for tool calls and other exchanges.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("call timeout must be positive")
		}
		o.CallTimeout = d
		return nil
	}
}

// WithPingTimeout sets the timeout for the best-effort readiness ping.
func WithPingTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("ping timeout must be positive")
		}
		o.PingTimeout = d
		return nil
	}
}

// WithStopGrace sets the delay between graceful terminate and forced kill.
func WithStopGrace(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return fmt.Errorf("stop grace cannot be negative")
		}
		o.StopGrace = d
		return nil
	}
}

// WithRestartGap sets the settling delay between stop and start on restart.
func WithRestartGap(d time.Duration) Option {
	return func(o *Options) error {
		if d < 0 {
			return fmt.Errorf("restart gap cannot be negative")
		}
		o.RestartGap = d
		return nil
	}
}

// WithToolArgValidation toggles input schema validation for tool calls.
func WithToolArgValidation(enabled bool) Option {
	return func(o *Options) error {
		o.ValidateToolArgs = enabled
		return nil
	}
}
