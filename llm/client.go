package llm

import "context"

// Message roles understood by chat-completion endpoints.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Client sends a chat-completion request and returns the reply text.
// Implementations are safe for concurrent use.
type Client interface {
	ChatCompletion(ctx context.Context, req Request) (string, error)
}

// Request describes one chat-completion call. Schema, when set, constrains
// the model to return JSON conforming to it.
type Request struct {
	Model    string
	Messages []Message
	Schema   *ResponseSchema
}

// Message is a role-tagged message. Content is either a plain string or a
// []ContentPart for multimodal requests.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a mixed text/image message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" or "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// ResponseSchema is a strict JSON-schema output constraint.
type ResponseSchema struct {
	Name   string
	Schema map[string]any
}

// TextMessage builds a plain text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Content: text}
}

// DocumentMessage builds a user message pairing instruction text with an
// inline document image.
func DocumentMessage(text, dataURI string) Message {
	return Message{
		Role: RoleUser,
		Content: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}},
		},
	}
}

// DataURI embeds base64 document bytes as a data URI for transport.
func DataURI(mimeType, base64Data string) string {
	return "data:" + mimeType + ";base64," + base64Data
}
