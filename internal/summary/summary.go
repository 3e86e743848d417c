// Package summary implements the LLM-backed summarize and
// speaker-identify operations, their degenerate-input short-circuit,
// the JSON-extraction ladder for speaker identification, and the
// filesystem-backed summary cache keyed by job id.
package summary

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"meetflow/internal/apperr"
	"meetflow/internal/artifacts"
	"meetflow/internal/llm"
)

// degenerateWordThreshold and degenerateUniqueThreshold bound the
// short-circuit: fewer than 10 words, or fewer than 5 unique word
// tokens (case-insensitive, punctuation-stripped), skips the LLM call
// entirely.
const (
	degenerateWordThreshold   = 10
	degenerateUniqueThreshold = 5
)

const shortFormSummary = "## Summary\n\nThis recording is too short to summarize meaningfully."

const summarizeSystemPrompt = "You are an assistant that writes clear, concise meeting summaries in Markdown."

const identifySystemPrompt = "You are an assistant that infers real speaker names from meeting transcripts. " +
	"Respond with strict JSON only: a flat object mapping each raw speaker label (e.g. \"SPEAKER_00\") " +
	"to an inferred display name. Do not include any prose, explanation, or code fences."

// Service implements summarize/identify-speakers over a provider-agnostic
// llm.Service, plus the summary cache.
type Service struct {
	LLM   llm.Service
	Model string
	Store *artifacts.Store
}

// New constructs a summary Service.
func New(client llm.Service, model string, store *artifacts.Store) *Service {
	return &Service{LLM: client, Model: model, Store: store}
}

// Summarize returns markdown summarizing formattedTranscript. Below the
// degenerate-input thresholds it short-circuits without calling the LLM.
// Failures surface as ExternalFailure ("service temporarily unavailable").
func (s *Service) Summarize(ctx context.Context, formattedTranscript, systemPrompt, userPrompt string) (string, error) {
	if isDegenerate(formattedTranscript) {
		return shortFormSummary, nil
	}

	sysPrompt := summarizeSystemPrompt
	if systemPrompt != "" {
		sysPrompt = systemPrompt
	}
	content := formattedTranscript
	if userPrompt != "" {
		content = userPrompt + "\n\n" + formattedTranscript
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: sysPrompt},
		{Role: "user", Content: content},
	}

	resp, err := s.LLM.ChatCompletion(ctx, s.Model, messages, 0.3)
	if err != nil {
		return "", apperr.NewExternalFailure("service temporarily unavailable", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.NewExternalFailure("service temporarily unavailable", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// IdentifyResult is the outcome of IdentifySpeakers: either a
// successful mapping, or a parse-error description when the model's
// response could not be extracted. An unextractable response is not an
// error return.
type IdentifyResult struct {
	Mapping  map[string]string
	ParseErr string
}

// IdentifySpeakers asks the LLM to infer display names for raw speaker
// labels in formattedTranscript, optionally steered by extra context.
// The response is extracted via a three-rung ladder: direct JSON parse,
// fenced-code-block extraction, then first "{...}" substring parse.
func (s *Service) IdentifySpeakers(ctx context.Context, formattedTranscript, context_ string) (*IdentifyResult, error) {
	content := formattedTranscript
	if context_ != "" {
		content = "Additional context: " + context_ + "\n\n" + formattedTranscript
	}

	messages := []llm.ChatMessage{
		{Role: "system", Content: identifySystemPrompt},
		{Role: "user", Content: content},
	}

	resp, err := s.LLM.ChatCompletion(ctx, s.Model, messages, 0.1)
	if err != nil {
		return nil, apperr.NewExternalFailure("service temporarily unavailable", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.NewExternalFailure("service temporarily unavailable", nil)
	}

	raw := resp.Choices[0].Message.Content
	mapping, ok := extractMapping(raw)
	if !ok {
		return &IdentifyResult{ParseErr: "failed to parse speaker mapping from model response"}, nil
	}
	return &IdentifyResult{Mapping: mapping}, nil
}

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
var bracesPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractMapping runs the three-rung extraction ladder: direct parse,
// fenced code block, first {...} substring.
func extractMapping(raw string) (map[string]string, bool) {
	if m, ok := tryParse(raw); ok {
		return m, true
	}
	if match := fencedBlockPattern.FindStringSubmatch(raw); match != nil {
		if m, ok := tryParse(match[1]); ok {
			return m, true
		}
	}
	if match := bracesPattern.FindString(raw); match != "" {
		if m, ok := tryParse(match); ok {
			return m, true
		}
	}
	return nil, false
}

func tryParse(s string) (map[string]string, bool) {
	var m map[string]string
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &m); err != nil {
		return nil, false
	}
	return m, true
}

var punctuationPattern = regexp.MustCompile(`[^\w\s]`)

// isDegenerate reports whether transcript has fewer than 10 words or
// fewer than 5 unique word tokens, case-insensitive and
// punctuation-stripped.
func isDegenerate(transcript string) bool {
	cleaned := punctuationPattern.ReplaceAllString(strings.ToLower(transcript), "")
	words := strings.Fields(cleaned)
	if len(words) < degenerateWordThreshold {
		return true
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return len(unique) < degenerateUniqueThreshold
}

// GetCachedSummary returns the cached summary text for jobID, or
// apperr.NotFound if none is cached.
func (s *Service) GetCachedSummary(jobID string) (string, error) {
	path := s.Store.SummaryPath(jobID)
	if !artifacts.Exists(path) {
		return "", apperr.NewNotFound("summary not found")
	}
	raw, err := artifacts.ReadFile(path)
	if err != nil {
		return "", apperr.NewInternal("failed to read cached summary", err)
	}
	return string(raw), nil
}

// SaveSummary create-or-replaces the cached summary for jobID.
func (s *Service) SaveSummary(jobID, text string) error {
	if err := artifacts.WriteFile(s.Store.SummaryPath(jobID), []byte(text)); err != nil {
		return apperr.NewInternal("failed to save summary", err)
	}
	return nil
}

// DeleteSummary best-effort evicts the cached summary for jobID.
func (s *Service) DeleteSummary(jobID string) error {
	if err := artifacts.Remove(s.Store.SummaryPath(jobID)); err != nil {
		return apperr.NewInternal("failed to delete summary", err)
	}
	return nil
}
