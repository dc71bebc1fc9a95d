package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var GeminiClient *genai.GenerativeModel

// InitGemini creates the Gemini client used for email summarization.
// Gemini is optional: without an API key the summarize endpoint answers 503.
func InitGemini() {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, AI summaries are disabled")
		return
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		slog.Error("Failed to create Gemini client", "error", err)
		return
	}
	GeminiClient = client.GenerativeModel("gemini-1.5-flash")
	slog.Info("Gemini client initialized")
}
