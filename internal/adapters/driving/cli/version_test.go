package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	original := version
	SetVersion(v)
	t.Cleanup(func() { version = original })
}

func TestVersion(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "1.2.3")

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "llmdump version 1.2.3")
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersion_Short(t *testing.T) {
	setupTestServices(t)
	withVersion(t, "1.2.3")

	out, err := execute(t, "version", "--short")

	assert.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	withVersion(t, "dev")

	SetVersion("")
	assert.Equal(t, "dev", version)
}
