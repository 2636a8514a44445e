// Package vision extracts candidate book titles from a bookshelf photo using
// an OpenAI vision model. It is a pure call: no persistence, no retries.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrExtractionFailed is returned when the model call errors or its output
// carries no parseable book list.
var ErrExtractionFailed = errors.New("image analysis failed")

// Candidate is one raw (title, author?) guess, prior to catalog resolution.
type Candidate struct {
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
}

const systemPrompt = "You are a book identification expert. Analyze the image and list all visible book titles and authors. " +
	"Respond in JSON format with an array of books containing title and author fields."

type Extractor struct {
	client *openai.Client
	model  string
}

func NewExtractor(apiKey string) *Extractor {
	return &Extractor{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// Extract returns the ordered candidate list for one image. The list may be
// empty; a response the model could not structure is an error.
func (e *Extractor) Extract(ctx context.Context, image []byte) ([]Candidate, error) {
	encoded := base64.StdEncoding.EncodeToString(image)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: "Please identify all visible books in this image.",
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + encoded,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty model response", ErrExtractionFailed)
	}

	var parsed struct {
		Books []Candidate `json:"books"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if parsed.Books == nil {
		return nil, fmt.Errorf("%w: no book list in model response", ErrExtractionFailed)
	}
	return parsed.Books, nil
}
