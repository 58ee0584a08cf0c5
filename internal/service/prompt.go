package service

import (
	"fmt"
	"strings"
)

const jsonFormatLine = `Format as JSON: {"caption": "", "hashtags": [], "imagePrompt": ""}`

// buildCampaignPrompt 营销活动完整提示词
func buildCampaignPrompt(req GenerationRequest, targetMarket string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a marketing campaign for: %s\n\n", req.Description)
	sb.WriteString("Campaign Requirements:\n")
	fmt.Fprintf(&sb, "- Content Style: %s\n", req.ContentStyle)
	fmt.Fprintf(&sb, "- Platform: %s\n", req.PlatformFormat)
	fmt.Fprintf(&sb, "- Tone: %s\n", req.ToneOfVoice)
	fmt.Fprintf(&sb, "- Language: %s\n", req.Language)
	fmt.Fprintf(&sb, "- Target Market: %s\n\n", targetMarket)
	sb.WriteString("Generate:\n")
	sb.WriteString("1. A compelling caption (max 150 words) that matches the style and tone\n")
	fmt.Fprintf(&sb, "2. 8 relevant hashtags for %s market\n", marketAdjective(targetMarket))
	sb.WriteString("3. A detailed image description for product visualization\n\n")

	switch req.Language {
	case LanguageBilingual:
		sb.WriteString("Mix English and Bahasa Malaysia naturally.\n\n")
	case LanguageMalay:
		sb.WriteString("Write in Bahasa Malaysia.\n\n")
	}

	sb.WriteString(jsonFormatLine)
	return sb.String()
}

// buildTextPrompt 只生成文案的简短提示词
func buildTextPrompt(description string) string {
	return fmt.Sprintf("Create a marketing campaign for: %s.\n"+
		"Generate:\n"+
		"1. A compelling caption (max 150 words)\n"+
		"2. 5 relevant hashtags\n"+
		"3. A detailed image description for product visualization\n\n%s", description, jsonFormatLine)
}

func marketAdjective(market string) string {
	if strings.EqualFold(market, "Malaysia") {
		return "Malaysian"
	}
	return market
}
