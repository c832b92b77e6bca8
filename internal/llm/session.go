package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/termchat/internal/config"
	"github.com/raphaelgruber/termchat/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// titlePrompt asks the model to name a conversation from its first
// exchange. Wording follows the original terminal client.
const titlePrompt = `Generate a short, descriptive title (3-5 words) for this conversation based on the following text:
%q
Reply with only the title.`

// Session wraps a langchaingo model for one platform. It satisfies both
// the manager's chat collaborator and the alias generator's summarizer.
type Session struct {
	llm       llms.Model
	modelName string
}

// NewSession creates a chat session for the given platform profile.
// Deepseek rides the OpenAI-compatible client with a base URL override,
// the same way the original client reused the OpenAI SDK.
func NewSession(ctx context.Context, platform models.Platform, profile config.Profile) (*Session, error) {
	apiKey := ""
	if profile.APIKeyEnv != "" {
		apiKey = os.Getenv(profile.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("missing API key for platform %q: set %s", platform, profile.APIKeyEnv)
		}
	}

	var model llms.Model
	var err error

	switch platform {
	case models.PlatformAnthropic:
		model, err = anthropic.New(
			anthropic.WithToken(apiKey),
			anthropic.WithModel(profile.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}

	case models.PlatformOllama:
		model, err = ollama.New(
			ollama.WithModel(profile.Model),
			ollama.WithServerURL(profile.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}

	case models.PlatformBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(profile.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock client: %w", err)
		}

	default:
		// openai, deepseek, and any user-defined OpenAI-compatible
		// endpoint from the profiles file.
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(profile.Model),
		}
		if profile.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(profile.BaseURL))
		}
		model, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", platform, err)
		}
	}

	return &Session{llm: model, modelName: profile.Model}, nil
}

// Model returns the model name the session talks to.
func (s *Session) Model() string {
	return s.modelName
}

// Complete sends a message history to the model and streams the reply.
// Each partial text chunk is handed to onChunk as it arrives while the
// full reply is buffered; the buffered text is returned once the stream
// finishes. Provider failures surface as ErrTransport.
func (s *Session) Complete(ctx context.Context, messages []models.Message, maxTokens int, onChunk func(string)) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(chatRole(msg.Role), msg.Content))
	}

	var reply strings.Builder
	opts := []llms.CallOption{
		llms.WithMaxTokens(maxTokens),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			reply.Write(chunk)
			if onChunk != nil {
				onChunk(string(chunk))
			}
			return nil
		}),
	}

	resp, err := s.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", wrapTransport(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", wrapTransport(fmt.Errorf("no response choices")))
	}

	// Providers without streaming support deliver everything in the
	// final choice; prefer it when the callback saw nothing.
	final := resp.Choices[0].Content
	if reply.Len() == 0 && final != "" {
		if onChunk != nil {
			onChunk(final)
		}
		return final, nil
	}
	return reply.String(), nil
}

// Title generates a short conversation title from a seed text.
func (s *Session) Title(ctx context.Context, text string) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.llm, fmt.Sprintf(titlePrompt, text))
	if err != nil {
		return "", fmt.Errorf("generate title: %w", wrapTransport(err))
	}
	return strings.ReplaceAll(strings.TrimSpace(resp), "\n", " "), nil
}

func chatRole(role string) llms.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
