package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"itemViewerBack/internal/models"
)

const (
	EnquiryRecipient      = "enquiries@wardrobewizard.com"
	enquirySuccessMessage = "Your enquiry has been sent successfully!"
	enquirySystemPrompt   = `You are an administrative assistant for an online wardrobe management app called "Item Viewer".`
)

type EnquiryService struct {
	client  ChatCompletionClient
	infoLog *log.Logger
	timeout time.Duration
	newID   func() string
}

func NewEnquiryService(client ChatCompletionClient, infoLog *log.Logger) *EnquiryService {
	return &EnquiryService{
		client:  client,
		infoLog: infoLog,
		timeout: 25 * time.Second,
		newID:   func() string { return uuid.NewString() },
	}
}

// HandleEnquiry drafts and "sends" an enquiry, reporting the outcome as a
// result rather than an error.
func (s *EnquiryService) HandleEnquiry(ctx context.Context, item models.Item) models.EnquiryResult {
	if _, err := s.SendEnquiry(ctx, item); err != nil {
		return models.EnquiryResult{Success: false, Message: fmt.Sprintf("Failed to send enquiry: %v", err)}
	}
	return models.EnquiryResult{Success: true, Message: enquirySuccessMessage}
}

// SendEnquiry asks the generation service for an email body and records the
// envelope in the info log. No mail is delivered.
func (s *EnquiryService) SendEnquiry(ctx context.Context, item models.Item) (models.EnquiryEnvelope, error) {
	if s.client == nil {
		return models.EnquiryEnvelope{}, fmt.Errorf("%w: generation client is not configured", models.ErrGenerationFailed)
	}

	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Complete(llmCtx, ChatCompletionRequest{
		Temperature: 0.7,
		Messages: []ChatMessage{
			{Role: "system", Content: enquirySystemPrompt},
			{Role: "user", Content: buildEnquiryPrompt(item)},
		},
	})
	if err != nil {
		return models.EnquiryEnvelope{}, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	body := strings.TrimSpace(resp.Content)
	if body == "" {
		return models.EnquiryEnvelope{}, fmt.Errorf("%w: empty email body", models.ErrGenerationFailed)
	}

	envelope := models.EnquiryEnvelope{
		ID:      s.newID(),
		To:      EnquiryRecipient,
		Subject: enquirySubject(item.Name),
		Body:    body,
	}
	if s.infoLog != nil {
		s.infoLog.Printf("enquiry %s simulated send to=%q subject=%q body=%q", envelope.ID, envelope.To, envelope.Subject, envelope.Body)
	}
	return envelope, nil
}

func enquirySubject(name string) string {
	return "New Item Enquiry: " + name
}

func buildEnquiryPrompt(item models.Item) string {
	var b strings.Builder
	b.WriteString("A user has just clicked \"Enquire\" on one of their items.\n")
	b.WriteString("Generate a professional and friendly email body for an internal enquiry.\n\n")
	b.WriteString(fmt.Sprintf("The email should be addressed to the support team at '%s'.\n", EnquiryRecipient))
	b.WriteString(fmt.Sprintf("The subject line should be %q.\n", enquirySubject(item.Name)))
	b.WriteString("The body should clearly state the item's details and that a user has shown interest.\n\n")
	b.WriteString("Item Details:\n")
	b.WriteString(fmt.Sprintf("- Name: %s\n", item.Name))
	b.WriteString(fmt.Sprintf("- Type: %s\n", item.Type))
	b.WriteString(fmt.Sprintf("- Description: %s\n\n", item.Description))
	b.WriteString("Generate only the body of the email.")
	return b.String()
}
