package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// University is one entry in an advisory university search result.
type University struct {
	Name        string   `json:"name"`
	Loc         string   `json:"loc"`
	Slug        string   `json:"slug"`
	Rank        int      `json:"rank"`
	Accept      int      `json:"accept"`
	Tuition     int      `json:"tuition"`
	Country     string   `json:"country"`
	Description string   `json:"description"`
	Website     string   `json:"website"`
	Courses     []string `json:"courses"`
}

// SearchContext narrows advisory searches.
type SearchContext struct {
	Country string `json:"country,omitempty"`
	Course  string `json:"course,omitempty"`
}

// SearchUniversities asks the model for real accredited universities
// matching the query, optionally biased toward a country and course.
func (c *Client) SearchUniversities(ctx context.Context, query string, sc SearchContext) ([]University, error) {
	subject := "that are popular"
	if query != "" {
		subject = fmt.Sprintf("matching or relevant to %q", query)
	}

	prompt := fmt.Sprintf("Search for REAL, ACCREDITED universities %s for international students.\n", subject)
	if sc.Country != "" {
		prompt += fmt.Sprintf("PRIORITY: Focus PRIMARILY on universities located in %q.\n", sc.Country)
	}
	if sc.Course != "" {
		prompt += fmt.Sprintf("SECONDARY FOCUS: Universities strong in %q.\n", sc.Course)
	}
	ctxJSON, _ := json.Marshal(sc)
	prompt += fmt.Sprintf(`Context Details: %s

Requirement: Return a list of up to 12 universities.
For each university, provide:
- name: Full official name
- loc: city, country
- slug: kebab-case name
- rank: approximate world QS rank (integer)
- accept: approximate acceptance rate %% (integer)
- tuition: approximate yearly tuition in USD (integer)
- country: full country name
- description: short one-liner about the university
- website: official website URL
- courses: array of 3-5 relevant master's programs

Return ONLY a JSON array of objects.`, ctxJSON)

	var out []University
	if err := c.ChatJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchCourses asks the model for standard course names matching the query.
func (c *Client) SearchCourses(ctx context.Context, query string, sc SearchContext) ([]string, error) {
	ctxJSON, _ := json.Marshal(sc)
	prompt := fmt.Sprintf(`Search for valid courses/fields of study matching or relevant to %q.
Context of interest: %s
Return a list of up to 15 specific and standard course names.

Return ONLY a JSON array of strings.`, query, ctxJSON)

	var out []string
	if err := c.ChatJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out, nil
}
