package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsaviz/internal/config"
	"github.com/udisondev/rsaviz/internal/dh"
	"github.com/udisondev/rsaviz/internal/rsakey"
	"github.com/udisondev/rsaviz/internal/testutil"
	"github.com/udisondev/rsaviz/internal/wizard"
)

type keySink struct {
	mu   sync.Mutex
	keys []rsakey.KeyMaterial
}

func (s *keySink) add(k rsakey.KeyMaterial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, k)
}

func (s *keySink) all() []rsakey.KeyMaterial {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rsakey.KeyMaterial(nil), s.keys...)
}

func TestRun_Usage(t *testing.T) {
	t.Setenv("RSAVIZ_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	err := run(ctx, nil, strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, errUsage)

	err = run(ctx, []string{"encrypt"}, strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, errUsage)
}

func TestRun_Dispatch(t *testing.T) {
	t.Setenv("RSAVIZ_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	var out bytes.Buffer
	err := run(ctx, []string{"mitm", "-a", "6", "-b", "15", "-c", "13", "-d", "7"}, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "attack succeeded")
}

func TestRunWizard_FullFlow(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	input := strings.Join([]string{
		"4", // не простое
		"61",
		"53",
		"",
		"",
		"17",
		"Hello",
		"",
		"",
		":back",
		":quit",
	}, "\n")

	var sink keySink
	var out bytes.Buffer
	require.NoError(t, runWizard(ctx, strings.NewReader(input), &out, sink.add))

	s := out.String()
	assert.Contains(t, s, wizard.InvalidInputMessage)
	assert.Contains(t, s, "n = 61 * 53 = 3233")
	assert.Contains(t, s, "Private key (d, n) = (2753, 3233)")
	assert.Contains(t, s, "Decrypted Message: Hello")

	keys := sink.all()
	require.Len(t, keys, 1)
	assert.Equal(t, int64(2753), keys[0].D)

	// :back возвращает на страницу шифрования
	last := s[strings.LastIndex(s, "\n["):]
	assert.Contains(t, last, "Encryption")
}

func TestRunWizard_EmptyLineKeepsRestoredValue(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	input := strings.Join([]string{"7", "11", ":back", "", ""}, "\n")

	var out bytes.Buffer
	require.NoError(t, runWizard(ctx, strings.NewReader(input), &out, nil))

	s := out.String()
	assert.Contains(t, s, "[11]>")
	assert.Equal(t, 2, strings.Count(s, "n = 7 * 11 = 77"))
	assert.NotContains(t, s, wizard.InvalidInputMessage)
}

func TestRunWizard_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runWizard(ctx, strings.NewReader("61\n"), &out, nil)
	require.NoError(t, err)
}

func TestRunMap_PlaysToEnd(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)

	cfg := config.Default()
	var sink keySink
	var out bytes.Buffer
	args := []string{"-p", "3", "-q", "11", "-e", "7", "-from", "0", "-to", "5", "-speed", "100", "-layout", "elliptical"}
	require.NoError(t, runMap(ctx, cfg, args, &out, sink.add))

	s := out.String()
	assert.Contains(t, s, "n=33")
	assert.Contains(t, s, "d=3")
	assert.Contains(t, s, "2 -> 29")
	assert.Contains(t, s, "5 -> 14")
	assert.Contains(t, s, "elliptical layout")
	assert.Contains(t, s, "2 of 6 values map to themselves")

	keys := sink.all()
	require.Len(t, keys, 1)
	assert.Equal(t, int64(33), keys[0].N)
}

func TestRunMap_Rejections(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 5*time.Second)
	cfg := config.Default()

	tests := []struct {
		name string
		args []string
	}{
		{"bad layout", []string{"-layout", "spiral"}},
		{"not prime", []string{"-p", "8"}},
		{"bad speed", []string{"-speed", "0"}},
		{"inverted range", []string{"-from", "10", "-to", "2"}},
		{"unknown flag", []string{"-zoom", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runMap(ctx, cfg, tt.args, &bytes.Buffer{}, func(rsakey.KeyMaterial) {})
			require.Error(t, err)
		})
	}
}

func TestRunMITM(t *testing.T) {
	var recorded []dh.Exchange
	var out bytes.Buffer

	args := []string{"-p", "23", "-g", "5", "-a", "6", "-b", "15", "-c", "13", "-d", "7", "-msg", "pay alice", "-rewrite", "pay mallory"}
	err := runMITM(config.Default().MITM, args, &out, func(x dh.Exchange) { recorded = append(recorded, x) })
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, int64(18), recorded[0].AliceFinal)
	assert.Equal(t, int64(15), recorded[0].BobFinal)

	s := out.String()
	assert.Contains(t, s, "5^6 mod 23 = 8")
	assert.Contains(t, s, "attack succeeded")
	assert.Contains(t, s, `Mallory read:   "pay alice"`)
	assert.Contains(t, s, `Bob received:   "pay mallory"`)
	assert.Contains(t, s, "forged message")
}

func TestRunMITM_NotPrimitiveRoot(t *testing.T) {
	err := runMITM(config.Default().MITM, []string{"-p", "23", "-g", "2"}, &bytes.Buffer{}, func(dh.Exchange) {})
	require.ErrorIs(t, err, dh.ErrNotPrimitiveRoot)
}
