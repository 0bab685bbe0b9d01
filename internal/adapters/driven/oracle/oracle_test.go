package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/core/domain"
	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// scriptedLLM replays a fixed reply and records what it was asked.
type scriptedLLM struct {
	reply    string
	err      error
	prompts  []string
	messages [][]driven.ChatMessage
	genOpts  []driven.GenerateOptions
}

func (s *scriptedLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.genOpts = append(s.genOpts, opts)
	return s.reply, s.err
}

func (s *scriptedLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	s.messages = append(s.messages, messages)
	return s.reply, s.err
}

func (s *scriptedLLM) ModelName() string          { return "scripted" }
func (s *scriptedLLM) Ping(context.Context) error { return nil }
func (s *scriptedLLM) Close() error               { return nil }

type mapPromptStore map[string]string

func (m mapPromptStore) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", errors.New("missing")
}

func (m mapPromptStore) Reload() {}

var docs = []domain.DocumentSummary{
	{URL: "https://ex.com/a", Title: "A", Description: "first"},
	{URL: "https://ex.com/b", Title: "B"},
}

func TestClassifier_ParsesObject(t *testing.T) {
	llm := &scriptedLLM{reply: "```json\n" +
		`{"categories":[{"category":" Guides ","refUrls":["https://ex.com/a"," https://ex.com/b "]},{"category":"","refUrls":["x"]}]}` +
		"\n```"}
	c := NewClassifier(llm)

	set, err := c.Classify(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, domain.CategorySet{
		{Name: "Guides", RefURLs: []string{"https://ex.com/a", "https://ex.com/b"}},
	}, set)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], `"url": "https://ex.com/a"`)
	assert.True(t, llm.genOpts[0].JSON)
}

func TestClassifier_ParsesBareArrayWithChatter(t *testing.T) {
	llm := &scriptedLLM{reply: `Here you go: [{"name":"API","urls":["https://ex.com/b"]}] hope that helps`}
	set, err := NewClassifier(llm).Classify(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySet{{Name: "API", RefURLs: []string{"https://ex.com/b"}}}, set)
}

func TestClassifier_Unparseable(t *testing.T) {
	llm := &scriptedLLM{reply: "I could not do that"}
	_, err := NewClassifier(llm).Classify(context.Background(), docs)
	assert.ErrorIs(t, err, domain.ErrOracleResponse)
}

func TestClassifier_MissingCategoriesField(t *testing.T) {
	llm := &scriptedLLM{reply: `{"groups":[]}`}
	_, err := NewClassifier(llm).Classify(context.Background(), docs)
	assert.ErrorIs(t, err, domain.ErrOracleResponse)
}

func TestClassifier_PropagatesLLMError(t *testing.T) {
	llm := &scriptedLLM{err: domain.ErrLLMUnavailable}
	_, err := NewClassifier(llm).Classify(context.Background(), docs)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestClassifier_NilLLM(t *testing.T) {
	_, err := NewClassifier(nil).Classify(context.Background(), docs)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestClassifier_UsesPromptStore(t *testing.T) {
	llm := &scriptedLLM{reply: `{"categories":[]}`}
	c := NewClassifier(llm)
	c.SetPromptStore(mapPromptStore{driven.PromptClassify: "CUSTOM %s"})

	set, err := c.Classify(context.Background(), docs)
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.True(t, strings.HasPrefix(llm.prompts[0], "CUSTOM ["))
}

func TestClassifier_PromptWithoutVerbGetsDocumentsAppended(t *testing.T) {
	llm := &scriptedLLM{reply: `{"categories":[]}`}
	c := NewClassifier(llm)
	c.SetPromptStore(mapPromptStore{driven.PromptClassify: "no verb here"})

	_, err := c.Classify(context.Background(), docs)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(llm.prompts[0], "no verb here\n\n["))
	assert.NotContains(t, llm.prompts[0], "%!")
}

func TestIdentifierGenerator(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    string
		wantErr bool
	}{
		{name: "json", reply: `{"identifier":"react-docs"}`, want: "react-docs"},
		{name: "fenced json", reply: "```\n{\"identifier\": \"Go Tour\"}\n```", want: "Go Tour"},
		{name: "plain line", reply: "  \"svelte-kit\"\n", want: "svelte-kit"},
		{name: "empty json", reply: `{"identifier":""}`, wantErr: true},
		{name: "empty reply", reply: "   ", wantErr: true},
		{name: "multi line prose", reply: "Sure!\nI think it should be docs", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewIdentifierGenerator(&scriptedLLM{reply: tt.reply})
			got, err := g.GenerateIdentifier(context.Background(), docs)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrOracleResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleaner_EmptyInputSkipsModel(t *testing.T) {
	llm := &scriptedLLM{reply: "should not be used"}
	c := NewCleaner(llm)

	out, err := c.Clean(context.Background(), "  \n")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, llm.messages)

	out, err = NewCleaner(nil).Clean(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCleaner_SendsSystemPromptAndStripsFence(t *testing.T) {
	llm := &scriptedLLM{reply: "```markdown\n# Title\n\nBody\n```"}
	c := NewCleaner(llm)
	c.SetPromptStore(mapPromptStore{driven.PromptCleanup: "clean it"})

	out, err := c.Clean(context.Background(), "# Title\nnav nav\n\nBody")
	require.NoError(t, err)

	assert.Equal(t, "# Title\n\nBody", out)
	require.Len(t, llm.messages, 1)
	assert.Equal(t, "system", llm.messages[0][0].Role)
	assert.Equal(t, "clean it", llm.messages[0][0].Content)
	assert.Equal(t, "# Title\nnav nav\n\nBody", llm.messages[0][1].Content)
}

func TestCleaner_KeepsContentAfterLeadingCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "code block followed by prose",
			reply: "```go\nfmt.Println(1)\n```\n\nAfter the code block comes prose.",
			want:  "```go\nfmt.Println(1)\n```\n\nAfter the code block comes prose.",
		},
		{
			name:  "several fenced blocks",
			reply: "```bash\ngo build\n```\n\nThen run it:\n\n```bash\n./tool\n```",
			want:  "```bash\ngo build\n```\n\nThen run it:\n\n```bash\n./tool\n```",
		},
		{
			name:  "document that is only a code block",
			reply: "```go\nfunc main() {}\n```",
			want:  "```go\nfunc main() {}\n```",
		},
		{
			name:  "untagged wrapper",
			reply: "```\n# Title\n\nBody\n```",
			want:  "# Title\n\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewCleaner(&scriptedLLM{reply: tt.reply}).Clean(context.Background(), "raw")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "[1]", stripFences("```json\n[1]\n```"))
	assert.Equal(t, "```\nonly opener", stripFences("```\nonly opener"))
	assert.Equal(t, "plain", stripFences("plain"))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := "abécd"

	got := truncate(s, 3)

	assert.Equal(t, "ab...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "short", truncate("short", 10))
}

func TestCleaner_NilLLM(t *testing.T) {
	_, err := NewCleaner(nil).Clean(context.Background(), "text")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("text {\"a\":1} more"))
	assert.Equal(t, `[1]`, extractJSON("```json\n[1]\n```"))
	assert.Equal(t, "nothing", extractJSON(" nothing "))
}

func TestDefaultPrompts(t *testing.T) {
	prompts := DefaultPrompts()
	assert.Len(t, prompts, 3)
	assert.Contains(t, prompts[driven.PromptClassify], "%s")
	assert.Contains(t, prompts[driven.PromptIdentifier], "%s")
	assert.NotContains(t, prompts[driven.PromptCleanup], "%s")
}
