package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/luckguide/luckguide-golang/internal/i18n"
)

// Service holds the Gemini client used to generate palm readings.
type Service struct {
	Client *genai.Client
	Model  string
}

func NewService(apiKey string) (*Service, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Service{Client: client, Model: "gemini-1.5-flash"}, nil
}

// ReadingRequest is what the user tells us about themselves.
type ReadingRequest struct {
	Name      string
	BirthDate string
	Question  string
}

func systemInstruction(lang i18n.Lang) string {
	switch lang {
	case i18n.ZH:
		return "你是一位温和而专业的掌相与运势顾问。请用简体中文给出一段积极、具体、可执行的运势解读，分为事业、感情、健康三个部分。不要给出医疗或法律建议。"
	case i18n.JA:
		return "あなたは穏やかで経験豊かな手相・運勢のアドバイザーです。日本語で、仕事・恋愛・健康の3つの観点から前向きで具体的な運勢ガイドを書いてください。医療や法律の助言はしないでください。"
	default:
		return "You are a warm, experienced palm-reading and fortune guide. Write an encouraging, specific luck guide in English, covering career, love and wellbeing. Never give medical or legal advice."
	}
}

// GenerateReading produces a localized luck-guide reading and reports the
// token usage so the handler can account for the credit cost.
func (s *Service) GenerateReading(ctx context.Context, lang i18n.Lang, req ReadingRequest) (string, int, error) {
	model := s.Client.GenerativeModel(s.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction(lang))},
	}

	prompt := fmt.Sprintf("Name: %s\nBirth date: %s\nQuestion: %s",
		req.Name, req.BirthDate, req.Question)

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", 0, fmt.Errorf("error generating reading: %w", err)
	}

	totalTokens := 0
	if res.UsageMetadata != nil {
		totalTokens = int(res.UsageMetadata.TotalTokenCount)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", totalTokens, fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", totalTokens, fmt.Errorf("no text in model response")
	}

	return sb.String(), totalTokens, nil
}
