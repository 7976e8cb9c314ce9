// SPDX-License-Identifier: MIT

package tor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSOCKSAddrOrEmbedded(t *testing.T) {
	_, err := New(nil, Config{})
	require.Error(t, err)
}

func TestShouldRotateLockedByRequestCount(t *testing.T) {
	m := &Manager{circuitSince: time.Now(), requestCount: rotateAfterRequests}
	assert.True(t, m.shouldRotateLocked())
}

func TestShouldRotateLockedByAge(t *testing.T) {
	m := &Manager{circuitSince: time.Now().Add(-rotateAfterAge - time.Second)}
	assert.True(t, m.shouldRotateLocked())
}

func TestShouldNotRotateFreshLowVolumeCircuit(t *testing.T) {
	m := &Manager{circuitSince: time.Now(), requestCount: 1}
	assert.False(t, m.shouldRotateLocked())
}

func TestRotateResetsAgeAndRequestCount(t *testing.T) {
	m := &Manager{circuitSince: time.Now().Add(-time.Hour), requestCount: 500}
	require.NoError(t, m.Rotate(nil))
	assert.Less(t, m.Age(), time.Second)
	assert.Equal(t, 0, m.RequestCount())
}
