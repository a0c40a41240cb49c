package ai

import (
	"context"
	"fmt"
	"strings"
)

const minSOPLength = 50

type SOPCategory struct {
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Weight float64 `json:"weight"`
}

type SOPFeedback struct {
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
}

// SOPAnalysis is the structured review of a statement of purpose.
type SOPAnalysis struct {
	TotalScore         int           `json:"totalScore"`
	Quality            string        `json:"quality"`
	HumanizeScore      int           `json:"humanizeScore"`
	PlagiarismScore    int           `json:"plagiarismScore"`
	Categories         []SOPCategory `json:"categories"`
	WeakAreas          []SOPFeedback `json:"weakAreas"`
	Summary            string        `json:"summary"`
	HumanizeFeedback   string        `json:"humanizeFeedback"`
	PlagiarismFeedback string        `json:"plagiarismFeedback"`
}

type SOPHumanized struct {
	HumanizedText string   `json:"humanizedText"`
	Improvements  []string `json:"improvements"`
}

// AnalyzeSOP scores an SOP draft across clarity, financial justification,
// career ROI, originality and structure, plus AI-likeness and originality
// estimates. Drafts too short to judge get a canned needs-work result
// without calling the model.
func (c *Client) AnalyzeSOP(ctx context.Context, text string) (*SOPAnalysis, error) {
	if len(strings.TrimSpace(text)) < minSOPLength {
		return &SOPAnalysis{
			Quality:         "needs-work",
			PlagiarismScore: 100,
			Categories:      []SOPCategory{},
			WeakAreas: []SOPFeedback{{
				Issue:          "Text too short",
				Recommendation: "Provide at least 50 words for accurate analysis",
			}},
			Summary:            "Your SOP is too short. Please provide at least 50 words for comprehensive analysis.",
			HumanizeFeedback:   "Not enough content to analyze writing style.",
			PlagiarismFeedback: "Not enough content to check originality.",
		}, nil
	}

	prompt := fmt.Sprintf(`You are an expert SOP analyzer specializing in detecting AI-generated content and ensuring authentic human writing. Be EXTREMELY STRICT with humanize scoring: most AI-generated content should score 40-70, and only genuinely human, deeply personal writing gets 90+.

SOP Text:
%q

Provide a detailed analysis in JSON format with the following structure:
{
  "totalScore": number (0-100),
  "quality": string ("excellent", "good", "fair", "needs-work"),
  "humanizeScore": number (0-100),
  "plagiarismScore": number (0-100, where 0-15 means highly original),
  "categories": [
    { "name": "Clarity", "score": number (0-20), "weight": 0.2 },
    { "name": "Financial Justification", "score": number (0-20), "weight": 0.2 },
    { "name": "Career ROI", "score": number (0-20), "weight": 0.2 },
    { "name": "Originality", "score": number (0-20), "weight": 0.2 },
    { "name": "Structure", "score": number (0-20), "weight": 0.2 }
  ],
  "weakAreas": [
    { "issue": "string", "recommendation": "string" }
  ],
  "summary": "string - overall assessment and critical next steps",
  "humanizeFeedback": "string - specific advice on making the writing authentic and human, pointing out any AI-like patterns",
  "plagiarismFeedback": "string - specific feedback on originality with examples of generic phrases to replace"
}

AI-generation red flags to penalize: generic openings like "In today's world", excessive "Furthermore"/"Moreover"/"Additionally", uniform paragraph lengths, perfect grammar with no natural imperfections, phrases like "passionate about" or "make a difference", achievements listed without personal reflection, no specific dates, names or unique details.

In humanizeFeedback, quote the exact generic phrases found and suggest concrete personal replacements with specific details, varied sentence lengths and emotional context.`, text)

	var out SOPAnalysis
	if err := c.ChatJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HumanizeSOP rewrites an SOP draft to read as human-written.
func (c *Client) HumanizeSOP(ctx context.Context, text string) (*SOPHumanized, error) {
	prompt := fmt.Sprintf(`You are an expert humanizer and editor. Rewrite this Statement of Purpose so it sounds 100%% human-written.

Instructions:
1. Eliminate AI-like "perfect" sentence structures.
2. Add specific, believable personal anecdotes and small details.
3. Vary sentence lengths (short punches mixed with longer reflections).
4. Use natural transition words (avoid "Furthermore", "Moreover", "Additionally").
5. Add emotional depth and a unique personal voice.
6. Keep the tone professional but authentically human.
7. Never use "In today's world" or similar cliches.

Original SOP:
%q

Provide your response in JSON format:
{
  "humanizedText": "string - the complete rewritten SOP",
  "improvements": ["string"] - list of key changes made
}`, text)

	var out SOPHumanized
	if err := c.ChatJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
