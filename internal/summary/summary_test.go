package summary

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"meetflow/internal/artifacts"
	"meetflow/internal/llm"
)

type fakeLLM struct {
	response *llm.ChatResponse
	err      error
	calls    int
}

func (f *fakeLLM) ChatCompletion(ctx context.Context, model string, messages []llm.ChatMessage, temperature float64) (*llm.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func withContent(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Choices: []llm.ChatChoice{{
			Message: llm.ChatMessage{Role: "assistant", Content: content},
		}},
	}
}

func newTestService(t *testing.T, llmClient llm.Service) *Service {
	t.Helper()
	dir := t.TempDir()
	store, err := artifacts.New(
		filepath.Join(dir, "uploads"),
		filepath.Join(dir, "transcripts"),
		filepath.Join(dir, "transcripts_edited"),
		filepath.Join(dir, "summaries"),
		filepath.Join(dir, "exports"),
	)
	require.NoError(t, err)
	return New(llmClient, "test-model", store)
}

func TestSummarize_DegenerateShortCircuit(t *testing.T) {
	fake := &fakeLLM{}
	s := newTestService(t, fake)

	out, err := s.Summarize(context.Background(), "hi there", "", "")
	require.NoError(t, err)
	require.Equal(t, shortFormSummary, out)
	require.Equal(t, 0, fake.calls)
}

func TestSummarize_CallsLLMWhenSubstantial(t *testing.T) {
	fake := &fakeLLM{response: withContent("## Summary\n\nReal content.")}
	s := newTestService(t, fake)

	transcript := "Speaker 1: we discussed the roadmap, budget, timeline, and staffing needs at length today."
	out, err := s.Summarize(context.Background(), transcript, "", "")
	require.NoError(t, err)
	require.Equal(t, "## Summary\n\nReal content.", out)
	require.Equal(t, 1, fake.calls)
}

func TestSummarize_LLMFailureSurfacesExternalFailure(t *testing.T) {
	fake := &fakeLLM{err: context.DeadlineExceeded}
	s := newTestService(t, fake)

	transcript := "Speaker 1: we discussed the roadmap, budget, timeline, and staffing needs at length today."
	_, err := s.Summarize(context.Background(), transcript, "", "")
	require.Error(t, err)
}

func TestIdentifySpeakers_DirectJSON(t *testing.T) {
	fake := &fakeLLM{response: withContent(`{"SPEAKER_00":"Alice","SPEAKER_01":"Bob"}`)}
	s := newTestService(t, fake)

	result, err := s.IdentifySpeakers(context.Background(), "transcript text", "")
	require.NoError(t, err)
	require.Equal(t, "Alice", result.Mapping["SPEAKER_00"])
}

func TestIdentifySpeakers_FencedCodeBlock(t *testing.T) {
	fake := &fakeLLM{response: withContent("Here is the mapping:\n```json\n{\"SPEAKER_00\":\"Alice\"}\n```")}
	s := newTestService(t, fake)

	result, err := s.IdentifySpeakers(context.Background(), "transcript text", "")
	require.NoError(t, err)
	require.Equal(t, "Alice", result.Mapping["SPEAKER_00"])
}

func TestIdentifySpeakers_FirstBracesSubstring(t *testing.T) {
	fake := &fakeLLM{response: withContent(`sure, here you go: {"SPEAKER_00":"Alice"} hope that helps`)}
	s := newTestService(t, fake)

	result, err := s.IdentifySpeakers(context.Background(), "transcript text", "")
	require.NoError(t, err)
	require.Equal(t, "Alice", result.Mapping["SPEAKER_00"])
}

func TestIdentifySpeakers_UnparsableReturnsStructuredError(t *testing.T) {
	fake := &fakeLLM{response: withContent("I cannot determine the speakers.")}
	s := newTestService(t, fake)

	result, err := s.IdentifySpeakers(context.Background(), "transcript text", "")
	require.NoError(t, err)
	require.Nil(t, result.Mapping)
	require.NotEmpty(t, result.ParseErr)
}

func TestSummaryCache_RoundTrip(t *testing.T) {
	s := newTestService(t, &fakeLLM{})

	_, err := s.GetCachedSummary("job-1")
	require.Error(t, err)

	require.NoError(t, s.SaveSummary("job-1", "cached text"))
	got, err := s.GetCachedSummary("job-1")
	require.NoError(t, err)
	require.Equal(t, "cached text", got)

	require.NoError(t, s.DeleteSummary("job-1"))
	_, err = s.GetCachedSummary("job-1")
	require.Error(t, err)
}
