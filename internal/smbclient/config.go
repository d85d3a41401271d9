package smbclient

import "time"

// DialConfig groups the timeout knobs for a single remote connection.
//
// Adapted from the teacher's pkg/adapter/smb/config.go SMBTimeoutsConfig:
// that struct bounds how long an SMB *server* waits on a client; here the
// same fields bound how long this *client* waits on the server, since a
// remote share can hang or drop a connection exactly as a slow client can.
//
// SMB2Collaborator applies only Dial; Read, Write and Idle are carried and
// defaulted but not enforced on any request or session.
type DialConfig struct {
	// Dial is the maximum duration to establish the TCP connection. SMB2
	// negotiate/session-setup is bounded only by the caller's context.
	Dial time.Duration `mapstructure:"dial"`

	// Read is the configured limit for a single read request.
	Read time.Duration `mapstructure:"read"`

	// Write is the configured limit for a single write request.
	Write time.Duration `mapstructure:"write"`

	// Idle is the idle duration for an established session; no idle
	// session is closed by this module.
	Idle time.Duration `mapstructure:"idle"`
}

// DefaultMaxMessageSize mirrors the teacher's DefaultMaxMessageSize (64MB).
// No code in this module applies it; go-smb2 uses its own message limits.
const DefaultMaxMessageSize = 64 * 1024 * 1024

// DefaultDialConfig returns conservative client-side defaults.
func DefaultDialConfig() DialConfig {
	return DialConfig{
		Dial:  30 * time.Second,
		Read:  60 * time.Second,
		Write: 60 * time.Second,
		Idle:  5 * time.Minute,
	}
}

func (c *DialConfig) applyDefaults() {
	d := DefaultDialConfig()
	if c.Dial <= 0 {
		c.Dial = d.Dial
	}
	if c.Read <= 0 {
		c.Read = d.Read
	}
	if c.Write <= 0 {
		c.Write = d.Write
	}
	if c.Idle <= 0 {
		c.Idle = d.Idle
	}
}
