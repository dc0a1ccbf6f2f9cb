package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsConfigErrors(t *testing.T) {
	t.Setenv("TZ", "Not/AZone")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRunRejectsInvalidTrustedProxies(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, proxy.internal")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxy.internal")
}
