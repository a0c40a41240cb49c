package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSOPTooShort(t *testing.T) {
	// No server: short drafts must never reach the model.
	c := NewClient("http://localhost:1", "test-key", "test-model")
	defer c.Close()

	analysis, err := c.AnalyzeSOP(context.Background(), "I want to study abroad.")
	require.NoError(t, err)
	assert.Equal(t, "needs-work", analysis.Quality)
	assert.Equal(t, 100, analysis.PlagiarismScore)
	require.Len(t, analysis.WeakAreas, 1)
	assert.Equal(t, "Text too short", analysis.WeakAreas[0].Issue)
}

func TestAnalyzeSOP(t *testing.T) {
	reply := SOPAnalysis{
		TotalScore:      78,
		Quality:         "good",
		HumanizeScore:   65,
		PlagiarismScore: 10,
		Categories: []SOPCategory{
			{Name: "Clarity", Score: 16, Weight: 0.2},
		},
		Summary: "Solid draft with a generic opening.",
	}
	raw, _ := json.Marshal(reply)
	srv := chatServer(t, "```json\n"+string(raw)+"\n```", nil)
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	defer c.Close()

	text := "My decision to pursue a masters degree grew out of three years building payment systems at a small fintech, where I kept running into problems I did not have the theory to solve."
	analysis, err := c.AnalyzeSOP(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 78, analysis.TotalScore)
	assert.Equal(t, "good", analysis.Quality)
	require.Len(t, analysis.Categories, 1)
	assert.Equal(t, "Clarity", analysis.Categories[0].Name)
}

func TestHumanizeSOP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		content := `{"humanizedText":"rewritten draft","improvements":["varied sentence lengths"]}`
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "test-model")
	defer c.Close()

	out, err := c.HumanizeSOP(context.Background(), "original draft text")
	require.NoError(t, err)
	assert.Equal(t, "rewritten draft", out.HumanizedText)
	require.Len(t, out.Improvements, 1)
}
