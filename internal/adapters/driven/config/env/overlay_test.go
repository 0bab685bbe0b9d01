package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexpineda/llmdump/internal/adapters/driven/storage/memory"
)

var keys = []string{"llm.api_key", "crawl.page_limit", "export.clean", "export.tags"}

func TestVarName(t *testing.T) {
	assert.Equal(t, "LLMDUMP_LLM_API_KEY", VarName("llm.api_key"))
	assert.Equal(t, "LLMDUMP_CRAWL_PAGE_LIMIT", VarName("crawl.page_limit"))
}

func TestOverlay_FallsThroughWhenUnset(t *testing.T) {
	inner := memory.NewConfigStore(map[string]any{"llm.api_key": "from-file", "crawl.page_limit": 20})
	o := NewOverlay(inner, keys)

	assert.Equal(t, "from-file", o.GetString("llm.api_key"))
	assert.Equal(t, 20, o.GetInt("crawl.page_limit"))
	assert.False(t, o.Overridden("llm.api_key"))

	_, ok := o.Get("export.clean")
	assert.False(t, ok)
}

func TestOverlay_EnvironmentWins(t *testing.T) {
	t.Setenv("LLMDUMP_LLM_API_KEY", "from-env")
	t.Setenv("LLMDUMP_CRAWL_PAGE_LIMIT", "75")
	t.Setenv("LLMDUMP_EXPORT_CLEAN", "true")
	t.Setenv("LLMDUMP_EXPORT_TAGS", "a, b,,c")

	inner := memory.NewConfigStore(map[string]any{"llm.api_key": "from-file", "crawl.page_limit": 20})
	o := NewOverlay(inner, keys)

	assert.True(t, o.Overridden("llm.api_key"))
	assert.Equal(t, "from-env", o.GetString("llm.api_key"))
	assert.Equal(t, 75, o.GetInt("crawl.page_limit"))
	assert.True(t, o.GetBool("export.clean"))
	assert.Equal(t, []string{"a", "b", "c"}, o.GetStringSlice("export.tags"))

	val, ok := o.Get("llm.api_key")
	require.True(t, ok)
	assert.Equal(t, "from-env", val)
}

func TestOverlay_UnboundKeyIgnoresEnvironment(t *testing.T) {
	t.Setenv("LLMDUMP_LLM_MODEL", "env-model")
	inner := memory.NewConfigStore(map[string]any{"llm.model": "file-model"})
	o := NewOverlay(inner, keys)

	assert.Equal(t, "file-model", o.GetString("llm.model"))
}

func TestOverlay_BadNumberReadsZero(t *testing.T) {
	t.Setenv("LLMDUMP_CRAWL_PAGE_LIMIT", "lots")
	o := NewOverlay(memory.NewConfigStore(), keys)
	assert.Equal(t, 0, o.GetInt("crawl.page_limit"))
}

func TestOverlay_WritesGoToInner(t *testing.T) {
	t.Setenv("LLMDUMP_LLM_API_KEY", "from-env")
	inner := memory.NewConfigStore()
	o := NewOverlay(inner, keys)

	require.NoError(t, o.Set("llm.api_key", "persisted"))
	require.NoError(t, o.Save())
	require.NoError(t, o.Load())

	assert.Equal(t, "persisted", inner.GetString("llm.api_key"))
	assert.Equal(t, "from-env", o.GetString("llm.api_key"))
	assert.Equal(t, inner.Path(), o.Path())
}
