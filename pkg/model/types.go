package model

// Request maps to the completion relay's messages payload.
type Request struct {
	Messages    []Turn  `json:"messages"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      string  `json:"system"`
	Email       string  `json:"email,omitempty"`
}

// Turn is one role-tagged conversation turn.
type Turn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Cacheable bool   `json:"cacheable"`
}

// Response is the completion endpoint's reply body.
type Response struct {
	Content []ContentBlock `json:"content"`
}

// ContentBlock is one typed block of reply content. Only blocks with
// type "text" contribute to the final reply.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Text concatenates all text-typed content blocks in order.
func (r Response) Text() string {
	var out string
	for _, block := range r.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}
