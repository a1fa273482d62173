package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-bridge/bridge"
	"github.com/wippyai/wasm-bridge/demo"
	"github.com/wippyai/wasm-bridge/native"
)

func testConfig() *bridge.Config {
	return &bridge.Config{Registerer: prometheus.NewRegistry()}
}

func TestRun_Demo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(testConfig(), &out, false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, demo.Banner, lines[0])
	assert.Equal(t, "Hello, "+demo.PersonName, lines[len(lines)-1])
}

func TestRun_List(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(testConfig(), &out, true))

	text := out.String()
	assert.Contains(t, text, "Native bindings: 12")
	for _, d := range bridge.Declarations {
		assert.Contains(t, text, d.Name)
	}
	assert.NotContains(t, text, demo.Banner)
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	cfg := testConfig()
	cfg.Stdout = &out

	rt, s, err := demo.Open(ctx, cfg)
	require.NoError(t, err)
	defer rt.Close(ctx)

	byName := make(map[string]bridge.Binding)
	for _, b := range s.Bindings() {
		byName[b.Name] = b
	}

	res, err := invoke(ctx, s, byName[native.ExportAcceptString], []string{"héllo"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	res, err = invoke(ctx, s, byName[native.ExportEchoString], nil)
	require.NoError(t, err)
	assert.Equal(t, "héllo", res)

	res, err = invoke(ctx, s, byName[native.ExportRegisterCallback], []string{"5"})
	require.NoError(t, err)
	assert.Equal(t, "-1", res)

	_, err = invoke(ctx, s, byName[native.ExportInvokeCallback], []string{"7", "x"})
	require.Error(t, err)

	res, err = invoke(ctx, s, byName[native.ExportInvokeCallback], []string{"7", "0x8"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Contains(t, out.String(), "managed num: 7, 8")

	res, err = invoke(ctx, s, byName[native.ExportLiveAllocations], nil)
	require.NoError(t, err)
	assert.Equal(t, "0 (0x0)", res)
}
