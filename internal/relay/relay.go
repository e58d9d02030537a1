package relay

import "context"

// Message is the styled summary posted to a recipient's direct-message
// channel. Presentation past these fields (blocks, markdown flavour) is the
// relay function's concern; the chat-API wire format never reaches this
// service.
type Message struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Link  string `json:"link"`
}

// Messenger delivers one direct message through the chat relay.
// Mocking this interface in tests gives full control over relay behaviour
// without making real HTTP calls.
type Messenger interface {
	SendDirectMessage(ctx context.Context, endpointID string, msg Message) error
}

// Directory resolves a person's chat endpoint ID from their email address.
// Backed by the relay so the chat-API credential stays server-side.
type Directory interface {
	LookupByEmail(ctx context.Context, email string) (string, error)
}
