// SPDX-License-Identifier: MIT

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithNoConfiguredStreamsUsesStdout(t *testing.T) {
	l, err := New(Options{Level: "info"})
	require.NoError(t, err)
	l.Info("hello", nil)
}

func TestNewWritesRotatingFileWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	l, err := New(Options{
		Level:  "debug",
		Server: Config{Enabled: true, Filename: dir + "/server.log", Rotate: "50MB"},
	})
	require.NoError(t, err)
	defer l.Close()

	l.Info("test message", map[string]any{"key": "value"})
}

func TestMaskEmailRedactsLocalAndDomain(t *testing.T) {
	assert.Equal(t, "u***@e***.com", MaskEmail("user@example.com"))
	assert.Equal(t, "", MaskEmail(""))
}

func TestMaskIPRedactsLastTwoOctets(t *testing.T) {
	assert.Equal(t, "192.168.xxx.xxx", MaskIP("192.168.1.100"))
}

func TestSanitizeLogFieldsRedactsSecretsAndMasksIdentity(t *testing.T) {
	fields := map[string]any{
		"password": "hunter2",
		"email":    "user@example.com",
		"ip":       "10.0.0.1",
		"query":    "rust programming",
	}
	sanitized := SanitizeLogFields(fields)
	assert.Equal(t, "[REDACTED]", sanitized["password"])
	assert.Equal(t, "u***@e***.com", sanitized["email"])
	assert.Equal(t, "10.0.xxx.xxx", sanitized["ip"])
	assert.Equal(t, "rust programming", sanitized["query"])
}

func TestSanitizeLogFieldsNilReturnsNil(t *testing.T) {
	assert.Nil(t, SanitizeLogFields(nil))
}
