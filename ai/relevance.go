package ai

import (
	"context"
	"fmt"
)

// Relevance is an advisory verdict on whether a forum draft fits the
// education-loan community. It never gates posting on its own.
type Relevance struct {
	OnTopic    bool   `json:"onTopic"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason"`
}

func (c *Client) CheckRelevance(ctx context.Context, title, content string) (*Relevance, error) {
	prompt := fmt.Sprintf(`You moderate a community forum about education loans, studying abroad, universities, visas, scholarships and admissions.

Judge whether this draft post belongs in that forum.

Title: %q
Content: %q

Provide your verdict in JSON format:
{
  "onTopic": boolean,
  "confidence": number (0-100),
  "reason": "string - one sentence explaining the verdict"
}`, title, content)

	var out Relevance
	if err := c.ChatJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
