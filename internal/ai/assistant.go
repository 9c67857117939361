package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// BulletKind selects which editor section the bullet points are written for.
type BulletKind string

const (
	BulletsExperience BulletKind = "experience"
	BulletsEducation  BulletKind = "education"
	BulletsProject    BulletKind = "project"
)

// Summaries are three summary suggestions by career stage.
type Summaries struct {
	Junior string `json:"junior"`
	Mid    string `json:"mid"`
	Senior string `json:"senior"`
}

// Assistant builds prompts and decodes the generator's JSON answers.
type Assistant struct {
	gen Generator
}

func NewAssistant(gen Generator) *Assistant {
	return &Assistant{gen: gen}
}

const summaryPrompt = `Write three resume summaries for a %q position, one per career stage.
Each summary is two sentences at most and mentions relevant technologies, the value
the person brings to a team, and how their career has progressed.
Answer with JSON only, in exactly this shape:
{"junior": "...", "mid": "...", "senior": "..."}`

var bulletPrompts = map[BulletKind]string{
	BulletsExperience: `For the job title %q, write 4-5 first-person resume bullet points of at most
100 characters each about skills, technologies used and notable contributions in the role.
Do not repeat the job title.`,
	BulletsEducation: `For the field of study %q, write 4-5 first-person resume bullet points of at most
100 characters each about academic achievements, research, relevant coursework and projects.
Do not repeat the field of study.`,
	BulletsProject: `For the project %q, write 4-5 first-person resume bullet points of at most
100 characters each about skills, technologies used and contributions to the project.
Do not repeat the project name.`,
}

const bulletFormat = `
Answer with JSON only, in exactly this shape, with the bullets as one HTML unordered list:
{"bulletPoints": "<ul><li>...</li></ul>"}`

// Summaries asks for junior, mid and senior summaries for jobTitle.
func (a *Assistant) Summaries(ctx context.Context, jobTitle string) (Summaries, error) {
	var out Summaries
	raw, err := a.gen.Generate(ctx, fmt.Sprintf(summaryPrompt, jobTitle))
	if err != nil {
		return out, err
	}
	if err := decode(raw, &out); err != nil {
		return out, err
	}
	if out.Junior == "" && out.Mid == "" && out.Senior == "" {
		return out, fmt.Errorf("%w: no summaries in response", ErrGenerationFailed)
	}
	return out, nil
}

// BulletPoints asks for an HTML list of bullet points about subject.
func (a *Assistant) BulletPoints(ctx context.Context, kind BulletKind, subject string) (string, error) {
	tmpl, ok := bulletPrompts[kind]
	if !ok {
		return "", fmt.Errorf("unknown bullet kind %q", kind)
	}

	raw, err := a.gen.Generate(ctx, fmt.Sprintf(tmpl, subject)+bulletFormat)
	if err != nil {
		return "", err
	}

	var out struct {
		BulletPoints string `json:"bulletPoints"`
	}
	if err := decode(raw, &out); err != nil {
		return "", err
	}
	if !strings.Contains(out.BulletPoints, "<li>") {
		return "", fmt.Errorf("%w: response has no list items", ErrGenerationFailed)
	}
	return out.BulletPoints, nil
}

// decode tolerates a Markdown code fence around the JSON.
func decode(raw string, v any) error {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrGenerationFailed, err)
	}
	return nil
}
