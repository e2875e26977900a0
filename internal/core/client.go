package core

const defaultClientBuffer = 32

// Client is the Hub's delivery handle for one connection.
// ID is assigned by the Hub during registration.
type Client struct {
	ID     SessionID
	Events chan *Event
}

// NewClient constructs a client with a buffered event channel.
func NewClient(buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultClientBuffer
	}
	return &Client{
		Events: make(chan *Event, buffer),
	}
}
