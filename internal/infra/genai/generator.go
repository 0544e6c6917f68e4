package genai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"

	"github.com/pkg/errors"

	"coursecraft/internal/domain/entity"
	domainerrors "coursecraft/internal/domain/errors"
	"coursecraft/internal/domain/service"
)

const imageMIMEType = "image/png"

// GenerateDescription implements service.ContentGenerator.
func (c *client) GenerateDescription(ctx context.Context, title string, productType entity.ProductType, keywords string) (string, error) {
	if !c.available {
		return "", domainerrors.ErrGenerationUnavailable
	}

	text, err := c.generateText(ctx, generateRequest{
		Contents: []content{userText(descriptionPrompt(title, productType, keywords))},
	})
	if err != nil {
		return "", c.classify(err, "description")
	}

	return text, nil
}

// GenerateImage implements service.ContentGenerator.
func (c *client) GenerateImage(ctx context.Context, prompt string, ratio entity.AspectRatio) (*service.GeneratedImage, error) {
	if !c.available {
		return nil, domainerrors.ErrGenerationUnavailable
	}
	if !ratio.IsValid() {
		ratio = entity.AspectSquare
	}

	req := predictRequest{
		Instances: []predictInstance{{Prompt: imagePrompt(prompt)}},
		Parameters: predictParameters{
			SampleCount:   1,
			AspectRatio:   string(ratio),
			OutputOptions: outputOptions{MIMEType: imageMIMEType},
		},
	}

	var resp predictResponse
	if err := c.call(ctx, c.imageModel, "predict", req, &resp); err != nil {
		return nil, c.classify(err, "image")
	}

	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return nil, c.classify(errors.New("no image returned"), "image")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, c.classify(errors.Wrap(err, "decode image bytes"), "image")
	}

	mimeType := resp.Predictions[0].MIMEType
	if mimeType == "" {
		mimeType = imageMIMEType
	}

	return &service.GeneratedImage{Data: data, MIMEType: mimeType}, nil
}

// GenerateCertificateTheme implements service.ContentGenerator. Fields the
// model leaves empty keep the house theme.
func (c *client) GenerateCertificateTheme(ctx context.Context, prompt string) (entity.CertificateDesign, error) {
	if !c.available {
		return entity.CertificateDesign{}, domainerrors.ErrGenerationUnavailable
	}

	var design entity.CertificateDesign
	if err := c.generateJSON(ctx, certificatePrompt(prompt), certificateSchema, &design); err != nil {
		return entity.CertificateDesign{}, c.classify(err, "certificate design")
	}

	def := entity.DefaultCertificateDesign()
	fill := func(v *string, fallback string) {
		if *v == "" {
			*v = fallback
		}
	}
	fill(&design.BackgroundColor, def.BackgroundColor)
	fill(&design.TextColor, def.TextColor)
	fill(&design.AccentColor, def.AccentColor)
	fill(&design.BorderColor, def.BorderColor)
	fill(&design.FontFamily, def.FontFamily)
	fill(&design.BadgeColor, def.BadgeColor)
	design.Prompt = prompt

	return design, nil
}

// GenerateLandingPage implements service.ContentGenerator. Image fields come
// back as prompts; they are moved to ImagePrompts and cleared on the page.
func (c *client) GenerateLandingPage(ctx context.Context, prompt, creatorName string, products []*entity.Product) (*service.GeneratedPage, error) {
	if !c.available {
		return nil, domainerrors.ErrGenerationUnavailable
	}

	var raw struct {
		Sections []json.RawMessage `json:"sections"`
	}
	if err := c.generateJSON(ctx, landingPagePrompt(prompt, creatorName, products), landingPageSchema, &raw); err != nil {
		return nil, c.classify(err, "landing page")
	}

	out := &service.GeneratedPage{
		Page:         &entity.LandingPage{Sections: make([]entity.PageSection, 0, len(raw.Sections))},
		ImagePrompts: make(map[string]string),
	}
	seen := make(map[string]bool, len(raw.Sections))

	for _, msg := range raw.Sections {
		var section entity.PageSection
		if err := json.Unmarshal(msg, &section); err != nil {
			c.logger.Warn("[GenAI] Dropping unusable section", slog.Any("error", err))

			continue
		}
		if section.ID == "" || seen[section.ID] {
			section.ID = entity.NewID()
		}
		seen[section.ID] = true

		fields := section.Content.Fields()
		if fields.ImageURL != "" {
			out.ImagePrompts[section.ID] = fields.ImageURL
			fields.ImageURL = ""
			section.Content = section.Content.WithFields(fields)
		}

		out.Page.Sections = append(out.Page.Sections, section)
	}

	if len(out.Page.Sections) == 0 {
		return nil, c.classify(errors.New("no usable sections returned"), "landing page")
	}

	return out, nil
}

// SendChatMessage implements service.ContentGenerator.
func (c *client) SendChatMessage(ctx context.Context, history []service.ChatTurn, message string) (string, error) {
	if !c.available {
		return "", domainerrors.ErrGenerationUnavailable
	}

	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, content{Role: string(turn.Role), Parts: []part{{Text: turn.Text}}})
	}
	contents = append(contents, userText(message))

	reply, err := c.generateText(ctx, generateRequest{
		Contents:          contents,
		SystemInstruction: &content{Parts: []part{{Text: chatInstruction}}},
	})
	if err != nil {
		return "", c.classify(err, "reply")
	}

	return reply, nil
}

func (c *client) generateText(ctx context.Context, req generateRequest) (string, error) {
	var resp generateResponse
	if err := c.call(ctx, c.textModel, "generateContent", req, &resp); err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", errors.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	text := resp.text()
	if text == "" {
		return "", errors.New("empty response")
	}

	return text, nil
}

func (c *client) generateJSON(ctx context.Context, prompt string, s *schema, out any) error {
	text, err := c.generateText(ctx, generateRequest{
		Contents: []content{userText(prompt)},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   s,
		},
	})
	if err != nil {
		return err
	}

	return errors.Wrap(json.Unmarshal([]byte(text), out), "decode generated json")
}

func userText(text string) content {
	return content{Role: string(service.ChatRoleUser), Parts: []part{{Text: text}}}
}
