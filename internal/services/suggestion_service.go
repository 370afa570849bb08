package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"itemViewerBack/internal/models"
)

const suggestionSystemPrompt = "You are a personal stylist helping users find complementary items in their wardrobe."

// ImageInliner turns an image reference (URL or data URI) into a data URI.
type ImageInliner interface {
	Inline(ctx context.Context, ref string) (string, error)
}

type SuggestionService struct {
	client       ChatCompletionClient
	images       ImageInliner
	timeout      time.Duration
	imageTimeout time.Duration
	errorLog     *log.Logger
}

func NewSuggestionService(client ChatCompletionClient, images ImageInliner, errorLog *log.Logger) *SuggestionService {
	return &SuggestionService{
		client:       client,
		images:       images,
		timeout:      25 * time.Second,
		imageTimeout: 10 * time.Second,
		errorLog:     errorLog,
	}
}

// GetOutfitSuggestions asks for pairings of item among the other items and
// resolves the returned names. Failures are reported in the result.
func (s *SuggestionService) GetOutfitSuggestions(ctx context.Context, item models.Item, items []models.Item) models.SuggestionResult {
	others := make([]models.Item, 0, len(items))
	for _, other := range items {
		if other.ID != item.ID {
			others = append(others, other)
		}
	}

	names, err := s.SuggestNames(ctx, item, others)
	if err != nil {
		if s.errorLog != nil {
			s.errorLog.Printf("outfit suggestions for %s: %v", item.ID, err)
		}
		return models.SuggestionResult{Success: false, Suggestions: []string{}, Items: []models.Item{}, Error: err.Error()}
	}

	return models.SuggestionResult{
		Success:     true,
		Suggestions: names,
		Items:       ResolveSuggestions(names, items),
	}
}

// SuggestNames returns the names the generation service proposes. An empty
// list is a valid answer.
func (s *SuggestionService) SuggestNames(ctx context.Context, item models.Item, others []models.Item) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: generation client is not configured", models.ErrGenerationFailed)
	}

	images := s.inlineImages(ctx, item)

	llmCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Complete(llmCtx, ChatCompletionRequest{
		Temperature: 0.4,
		JSONOutput:  true,
		Messages: []ChatMessage{
			{Role: "system", Content: suggestionSystemPrompt},
			{Role: "user", Content: buildSuggestionPrompt(item, others), Images: images},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	return parseSuggestionNames(resp.Content), nil
}

// inlineImages converts the cover and additional images to data URIs,
// fetching them concurrently within imageTimeout. Images that cannot be
// fetched in time are left out; order is preserved.
func (s *SuggestionService) inlineImages(ctx context.Context, item models.Item) []string {
	refs := make([]string, 0, len(item.AdditionalImages)+1)
	for _, ref := range append([]string{item.CoverImage}, item.AdditionalImages...) {
		if strings.TrimSpace(ref) != "" {
			refs = append(refs, ref)
		}
	}

	if s.images == nil {
		out := make([]string, 0, len(refs))
		for _, ref := range refs {
			if strings.HasPrefix(ref, "data:image") {
				out = append(out, ref)
			}
		}
		return out
	}

	imgCtx, cancel := context.WithTimeout(ctx, s.imageTimeout)
	defer cancel()

	inlined := make([]string, len(refs))
	g, gctx := errgroup.WithContext(imgCtx)
	for i, ref := range refs {
		g.Go(func() error {
			uri, err := s.images.Inline(gctx, ref)
			if err != nil {
				if s.errorLog != nil {
					s.errorLog.Printf("inline image for %s: %v", item.ID, err)
				}
				return nil
			}
			inlined[i] = uri
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(inlined))
	for _, uri := range inlined {
		if uri != "" {
			out = append(out, uri)
		}
	}
	return out
}

func buildSuggestionPrompt(item models.Item, others []models.Item) string {
	var b strings.Builder
	b.WriteString("Given the following item:\n")
	b.WriteString(fmt.Sprintf("Name: %s\n", item.Name))
	b.WriteString(fmt.Sprintf("Type: %s\n", item.Type))
	b.WriteString(fmt.Sprintf("Description: %s\n", item.Description))
	b.WriteString("Its cover image and any additional images are attached.\n\n")

	b.WriteString("And the following existing items in the wardrobe:\n")
	for _, other := range others {
		b.WriteString(fmt.Sprintf("- Name: %s, Type: %s, Description: %s\n", other.Name, other.Type, other.Description))
	}

	b.WriteString("\nSuggest items from the existing wardrobe that would complement the given item to create a stylish outfit. ")
	b.WriteString("Use the item names exactly as listed. ")
	b.WriteString(`Respond with a JSON object of the form {"suggestions": ["<item name>", ...]}. `)
	b.WriteString("Return an empty list if nothing pairs well.")
	return b.String()
}

// parseSuggestionNames accepts {"suggestions": [...]}, a bare JSON array, or
// a comma/newline separated list.
func parseSuggestionNames(content string) []string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return []string{}
	}

	var wrapped struct {
		Suggestions []string `json:"suggestions"`
	}
	if strings.HasPrefix(content, "{") {
		if err := json.Unmarshal([]byte(content), &wrapped); err == nil {
			return cleanNames(wrapped.Suggestions)
		}
	}

	var list []string
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &list); err == nil {
			return cleanNames(list)
		}
	}

	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return cleanNames(fields)
}

func cleanNames(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		name = strings.TrimLeft(name, "-*• ")
		name = strings.Trim(name, `"'`)
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ResolveSuggestions maps each name to the first item with exactly that
// name. Names with no match are dropped.
func ResolveSuggestions(names []string, items []models.Item) []models.Item {
	resolved := make([]models.Item, 0, len(names))
	for _, name := range names {
		for _, item := range items {
			if item.Name == name {
				resolved = append(resolved, item)
				break
			}
		}
	}
	return resolved
}
