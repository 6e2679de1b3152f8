package client

// Mode selects where a single SendMetrics call delivers the message.
type Mode int

const (
	ModeDefault Mode = iota // Local if the client was configured with LocalMode
	ModeLocal               // Log the payload only
	ModeRemote              // Post to the gateway
)

type sendOptions struct {
	mode Mode
}

// SendOption tunes a single send call.
type SendOption func(*sendOptions)

// WithMode overrides the client's default mode for one call.
func WithMode(m Mode) SendOption {
	return func(o *sendOptions) { o.mode = m }
}

// Local is shorthand for WithMode(ModeLocal).
func Local() SendOption { return WithMode(ModeLocal) }

// Remote is shorthand for WithMode(ModeRemote).
func Remote() SendOption { return WithMode(ModeRemote) }
