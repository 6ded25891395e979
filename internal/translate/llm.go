package translate

import (
	"context"
	"fmt"
	"strings"

	"bullet-relay/server/internal/model"
	"bullet-relay/server/pkg/llm"
)

// Completer is the chat completion call used by LLM. *llm.Client
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

const systemPrompt = "You are a command parser that converts natural language into structured JSON format."

const userPrompt = `Parse the following command into a structured format.
Command: %s

The output should be a JSON object with the following structure:
{
    "name": "move",
    "arguments": {
        "position": [x, y, z]
    }
}
where position is a list of three numbers representing the target position.

For directional movements:
- "right" -> [1, 0, 0]
- "left" -> [-1, 0, 0]
- "forward" -> [0, 1, 0]
- "backward" -> [0, -1, 0]
- "up" -> [0, 0, 1]
- "down" -> [0, 0, -1]

Multiply the direction vector by the distance value.
Only output the JSON object, nothing else.`

// LLM translates text with a chat completion model.
type LLM struct {
	Client      Completer
	Temperature float64
}

// NewLLM creates an LLM translator.
func NewLLM(c Completer, temperature float64) *LLM {
	return &LLM{Client: c, Temperature: temperature}
}

func (l *LLM) Translate(ctx context.Context, text string) (model.CommandRequest, error) {
	content, err := l.Client.Complete(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPrompt, text)},
	}, l.Temperature)
	if err != nil {
		return model.CommandRequest{}, wrapError(err)
	}
	if strings.TrimSpace(content) == "" {
		return model.CommandRequest{}, parseError("Invalid response format")
	}
	return Decode([]byte(content))
}
