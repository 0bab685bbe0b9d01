// Package env layers environment variables over a ConfigStore.
//
// A key such as "llm.api_key" is read from LLMDUMP_LLM_API_KEY. When the
// variable is set and non-empty it wins over the wrapped store; writes
// always go to the wrapped store, so secrets passed through the
// environment are never persisted.
package env

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/alexpineda/llmdump/internal/core/ports/driven"
)

// Prefix is the environment variable prefix.
const Prefix = "LLMDUMP"

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// Overlay is a driven.ConfigStore that consults the environment first.
type Overlay struct {
	inner driven.ConfigStore
	v     *viper.Viper
}

// NewOverlay wraps inner, binding one environment variable per key.
// Keys not listed are served by inner alone.
func NewOverlay(inner driven.ConfigStore, keys []string) *Overlay {
	v := viper.New()
	v.SetEnvPrefix(Prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		// BindEnv only errors when called with no arguments.
		_ = v.BindEnv(key)
	}
	return &Overlay{inner: inner, v: v}
}

// VarName returns the environment variable consulted for key.
func VarName(key string) string {
	return Prefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Overridden reports whether key currently comes from the environment.
func (o *Overlay) Overridden(key string) bool {
	return o.v.IsSet(key)
}

// Get retrieves a configuration value, preferring the environment.
func (o *Overlay) Get(key string) (any, bool) {
	if o.v.IsSet(key) {
		return o.v.Get(key), true
	}
	return o.inner.Get(key)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	if o.v.IsSet(key) {
		return o.v.GetString(key)
	}
	return o.inner.GetString(key)
}

// GetInt retrieves an integer configuration value. An environment value
// that is not a number reads as 0, matching the file store.
func (o *Overlay) GetInt(key string) int {
	if o.v.IsSet(key) {
		n, err := cast.ToIntE(o.v.Get(key))
		if err != nil {
			return 0
		}
		return n
	}
	return o.inner.GetInt(key)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	if o.v.IsSet(key) {
		return o.v.GetBool(key)
	}
	return o.inner.GetBool(key)
}

// GetStringSlice retrieves a string slice; environment values are split
// on commas.
func (o *Overlay) GetStringSlice(key string) []string {
	if o.v.IsSet(key) {
		parts := strings.Split(o.v.GetString(key), ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return o.inner.GetStringSlice(key)
}

// Set writes to the wrapped store.
func (o *Overlay) Set(key string, value any) error {
	return o.inner.Set(key, value)
}

// Save persists the wrapped store.
func (o *Overlay) Save() error {
	return o.inner.Save()
}

// Load reloads the wrapped store. Environment values are read live.
func (o *Overlay) Load() error {
	return o.inner.Load()
}

// Path returns the wrapped store's path.
func (o *Overlay) Path() string {
	return o.inner.Path()
}
