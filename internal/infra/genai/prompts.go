package genai

import (
	"fmt"
	"strings"

	"coursecraft/internal/domain/entity"
)

const chatInstruction = "You are a friendly and helpful assistant for CourseCraft, a platform for creatives worldwide. " +
	"Your goal is to answer questions about the platform, help users navigate its features, and provide tips on " +
	"how to monetize their expertise. Keep your answers concise, encouraging, and use markdown for formatting if needed."

const productDescriptionPreview = 50

func descriptionPrompt(title string, productType entity.ProductType, keywords string) string {
	return fmt.Sprintf(`You are an expert copywriter for digital products.
Write a compelling product description for the following product.
Product Title: "%s"
Product Type: %s
Keywords: "%s"
The description should be engaging, highlight the key benefits for the customer, and be under 100 words.
Do not use markdown. Output only the description text.`, title, productType, keywords)
}

func imagePrompt(subject string) string {
	return "A vibrant, professional, and appealing digital product cover image for an online course/product. " +
		"Style: minimalist, modern. Subject: " + subject
}

func certificatePrompt(prompt string) string {
	return fmt.Sprintf(`Based on the user's prompt: "%s", generate a color scheme and font family for a certificate of completion. `+
		`Provide valid CSS color values (hex codes preferred) for backgroundColor, textColor, accentColor, borderColor and badgeColor. `+
		`For fontFamily, provide a primary font and a fallback (e.g., "'Georgia', serif").`, prompt)
}

func landingPagePrompt(prompt, creatorName string, products []*entity.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert web designer building a landing page for a creator named %s.\n", creatorName)
	fmt.Fprintf(&b, "The creator describes the page they want as: \"%s\".\n", prompt)
	b.WriteString("The creator sells these products:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: %s...\n", p.Name, preview(p.Description, productDescriptionPreview))
	}
	b.WriteString("Design a landing page as an ordered list of sections. Each section has a unique id, ")
	b.WriteString("a type from hero, about, products, testimonials, faq, cta, and content. ")
	b.WriteString("Write persuasive copy that matches the creator's voice. ")
	b.WriteString("For any imageUrl field, do not give a URL: write a short descriptive prompt for an image generator instead.")

	return b.String()
}

func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	return string(r[:limit])
}

var certificateSchema = object(
	[]string{"backgroundColor", "textColor", "accentColor", "borderColor", "fontFamily", "badgeColor"},
	map[string]*schema{
		"backgroundColor": str("Background color of the certificate."),
		"textColor":       str("Main text color."),
		"accentColor":     str("Color for the student name and highlights."),
		"borderColor":     str("Color of the border."),
		"fontFamily":      str("CSS font family with a fallback."),
		"badgeColor":      str("Color of the seal badge."),
	},
)

var landingPageSchema = object([]string{"sections"}, map[string]*schema{
	"sections": array(object([]string{"id", "type", "content"}, map[string]*schema{
		"id": str("Unique section id."),
		"type": {
			Type: "STRING",
			Enum: []string{"hero", "about", "products", "testimonials", "faq", "cta"},
		},
		"content": object(nil, map[string]*schema{
			"title":    str(""),
			"subtitle": str(""),
			"text":     str(""),
			"ctaText":  str(""),
			"imageUrl": str("A prompt describing the image to generate."),
			"testimonials": array(object([]string{"quote", "author", "role"}, map[string]*schema{
				"quote":  str(""),
				"author": str(""),
				"role":   str(""),
			})),
			"items": array(object([]string{"question", "answer"}, map[string]*schema{
				"question": str(""),
				"answer":   str(""),
			})),
		}),
	})),
})
