package core

// DefaultClientBuffer is the event buffer size used when none is configured.
const DefaultClientBuffer = 64

// Client is the subscriber handle of one connection as seen by the core layer.
// The gateway owns the transport; the core only knows the session id and the
// channel events are delivered on.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultClientBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}
