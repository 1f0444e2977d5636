package store

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
)

// Clock stamps run start and finish times.
type Clock interface {
	Now() time.Time
}

// LocalClock reads the host clock.
type LocalClock struct{}

func (LocalClock) Now() time.Time {
	return time.Now().UTC()
}

// NTPClock corrects the host clock by the offset reported by an NTP server.
// The server is queried once; if the query fails the host clock is used
// unchanged and Err reports why.
type NTPClock struct {
	Server  string
	Timeout time.Duration

	query  func(server string, opts ntp.QueryOptions) (*ntp.Response, error)
	once   sync.Once
	offset time.Duration
	err    error
}

// NewNTPClock returns a clock synchronised against server.
func NewNTPClock(server string, timeout time.Duration) *NTPClock {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &NTPClock{Server: server, Timeout: timeout, query: ntp.QueryWithOptions}
}

func (c *NTPClock) sync() {
	c.once.Do(func() {
		resp, err := c.query(c.Server, ntp.QueryOptions{Timeout: c.Timeout})
		if err == nil {
			err = resp.Validate()
		}
		if err != nil {
			c.err = err
			return
		}
		c.offset = resp.ClockOffset
	})
}

func (c *NTPClock) Now() time.Time {
	c.sync()
	return time.Now().Add(c.offset).UTC()
}

// Err returns the NTP query error, if any.
func (c *NTPClock) Err() error {
	c.sync()
	return c.err
}

// NewClock returns an NTPClock when server is set and a LocalClock otherwise.
func NewClock(server string) Clock {
	if server == "" {
		return LocalClock{}
	}
	return NewNTPClock(server, 0)
}
