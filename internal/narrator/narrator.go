// Package narrator turns reaction results into text that is shown in the
// results panel and read out by the accessibility layer.
package narrator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/virtual-lab/internal/models"
	"google.golang.org/api/option"
)

//go:embed prompts/explain_reaction.txt
var explainReactionPrompt string

var promptTemplate = template.Must(template.New("explain_reaction").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(explainReactionPrompt))

// Request describes a reaction the student just saw.
type Request struct {
	Chemicals []string // display names, in the order they were added
	Result    models.ReactionResult
}

// Narrator explains a reaction.
type Narrator interface {
	Narrate(ctx context.Context, req Request) (string, error)
}

// Static builds the explanation from the reaction data alone.
type Static struct{}

func (Static) Narrate(_ context.Context, req Request) (string, error) {
	return Describe(req), nil
}

// Describe is the plain-text summary of a reaction.
func Describe(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You mixed %s. ", strings.Join(req.Chemicals, " and "))
	if req.Result.Observation != "" {
		fmt.Fprintf(&b, "%s. ", strings.TrimSuffix(req.Result.Observation, "."))
	}
	if req.Result.Description != "" {
		fmt.Fprintf(&b, "%s ", req.Result.Description)
	}
	if req.Result.Equation != "" {
		fmt.Fprintf(&b, "Equation: %s", req.Result.Equation)
	}
	return strings.TrimSpace(b.String())
}

// Assistant asks Gemini to explain the reaction in student-friendly words.
type Assistant struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewAssistant(ctx context.Context, apiKey string) (*Assistant, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	model.SetTemperature(0.4)
	return &Assistant{
		client: client,
		model:  model,
	}, nil
}

func (a *Assistant) Close() {
	a.client.Close()
}

func (a *Assistant) Narrate(ctx context.Context, req Request) (string, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return "", err
	}

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return strings.TrimSpace(string(text)), nil
}

func renderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// New returns the Gemini assistant when an API key is set and the static
// narrator otherwise. The returned func releases the client.
func New(ctx context.Context, apiKey string) (Narrator, func(), error) {
	if apiKey == "" {
		return Static{}, func() {}, nil
	}
	a, err := NewAssistant(ctx, apiKey)
	if err != nil {
		return nil, nil, err
	}
	return a, a.Close, nil
}

// WithFallback returns the static description if the narrator fails.
func WithFallback(ctx context.Context, n Narrator, req Request) (text string, err error) {
	text, err = n.Narrate(ctx, req)
	if err != nil || text == "" {
		return Describe(req), err
	}
	return text, nil
}
