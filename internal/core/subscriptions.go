package core

// Subscriptions maps rooms to the clients that receive their broadcasts and
// session ids to clients. Only the hub goroutine touches it.
type Subscriptions struct {
	clients map[string]*Client
	rooms   map[string]map[*Client]struct{}
	joined  map[*Client]string
}

// NewSubscriptions creates an empty subscription table.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[*Client]struct{}),
		joined:  make(map[*Client]string),
	}
}

// Attach registers a connection under its session id.
func (s *Subscriptions) Attach(c *Client) {
	s.clients[c.ID] = c
}

// Detach drops every subscription of the session and forgets the client. It
// returns the client only the first time, so callers can release it once.
func (s *Subscriptions) Detach(id string) (*Client, bool) {
	c, ok := s.clients[id]
	if !ok {
		return nil, false
	}
	s.UnsubscribeAll(c)
	delete(s.clients, id)
	return c, true
}

// Client resolves a session id to its connection.
func (s *Subscriptions) Client(id string) (*Client, bool) {
	c, ok := s.clients[id]
	return c, ok
}

// Subscribe adds the client to the room channel, leaving any previous one.
func (s *Subscriptions) Subscribe(roomID string, c *Client) {
	s.UnsubscribeAll(c)
	set, ok := s.rooms[roomID]
	if !ok {
		set = make(map[*Client]struct{})
		s.rooms[roomID] = set
	}
	set[c] = struct{}{}
	s.joined[c] = roomID
}

// UnsubscribeAll removes the client from its room channel, if any.
func (s *Subscriptions) UnsubscribeAll(c *Client) {
	roomID, ok := s.joined[c]
	if !ok {
		return
	}
	delete(s.joined, c)
	if set, ok := s.rooms[roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(s.rooms, roomID)
		}
	}
}

// Subscribers returns the clients of a room channel.
func (s *Subscriptions) Subscribers(roomID string) map[*Client]struct{} {
	return s.rooms[roomID]
}
