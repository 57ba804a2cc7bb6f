package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/rsaviz/internal/rsakey"
	"github.com/udisondev/rsaviz/internal/stepper"
)

func newWizard(t *testing.T, opts ...Option) *Wizard {
	t.Helper()
	w := New(opts...)
	t.Cleanup(w.Close)
	return w
}

func enter(t *testing.T, w *Wizard, input string) {
	t.Helper()
	w.SetInput(input)
	require.NoError(t, w.Next(), "input %q on page %q", input, w.View().Title)
}

func TestWizard_FullFlow(t *testing.T) {
	var hooked []rsakey.KeyMaterial
	w := newWizard(t, WithKeyHook(func(k rsakey.KeyMaterial) { hooked = append(hooked, k) }))

	v := w.View()
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 8, v.Total)
	assert.True(t, v.Input)
	assert.False(t, v.CanPrevious)

	enter(t, w, "61")
	enter(t, w, "53")

	v = w.View()
	assert.Equal(t, "Calculate Modulus (n)", v.Title)
	assert.Equal(t, []string{"n = 61 * 53 = 3233"}, v.Lines)
	require.NoError(t, w.Next())

	v = w.View()
	assert.Equal(t, []string{"φ(n) = (61-1) * (53-1) = 3120"}, v.Lines)
	require.NoError(t, w.Next())

	enter(t, w, "17")
	key, ok := w.Key()
	require.True(t, ok)
	assert.Equal(t, int64(2753), key.D)
	require.Len(t, hooked, 1)
	assert.Equal(t, key, hooked[0])

	enter(t, w, "Hello")

	v = w.View()
	assert.Equal(t, "Encryption", v.Title)
	hex, err := key.EncryptText("Hello")
	require.NoError(t, err)
	assert.Contains(t, v.Lines, "Encrypted Message (Hex): "+hex)
	require.NoError(t, w.Next())

	v = w.View()
	assert.Equal(t, "Decryption", v.Title)
	assert.Contains(t, v.Lines, "Decrypted Message: Hello")
	assert.False(t, v.CanNext)

	assert.ErrorIs(t, w.Next(), stepper.ErrAtEnd)
	assert.Equal(t, 7, w.View().Index)
}

func TestWizard_RejectsBadPrimes(t *testing.T) {
	w := newWizard(t)

	tests := []struct {
		input   string
		wantErr error
	}{
		{"", ErrInvalidNumber},
		{"abc", ErrInvalidNumber},
		{"7.5", ErrInvalidNumber},
		{"1", rsakey.ErrNotPrime},
		{"-7", rsakey.ErrNotPrime},
		{"8", rsakey.ErrNotPrime},
	}

	for _, tt := range tests {
		w.SetInput(tt.input)
		err := w.Next()
		assert.ErrorIs(t, err, tt.wantErr, "input %q", tt.input)
		assert.Equal(t, 0, w.View().Index, "cursor must not move on %q", tt.input)
		assert.Equal(t, tt.input, w.View().Value, "input is kept for correction")
	}

	enter(t, w, " 7 ")
	w.SetInput("7")
	assert.ErrorIs(t, w.Next(), rsakey.ErrEqualPrimes)
	assert.Equal(t, 1, w.View().Index)
}

func TestWizard_RejectsBadExponent(t *testing.T) {
	w := newWizard(t)
	enter(t, w, "7")
	enter(t, w, "11")
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())

	for _, e := range []string{"1", "60", "61", "15", "x"} {
		w.SetInput(e)
		assert.Error(t, w.Next(), "e=%s", e)
		assert.Equal(t, 4, w.View().Index)
	}
	_, ok := w.Key()
	assert.False(t, ok, "no key before a valid exponent")

	enter(t, w, "17")
	key, ok := w.Key()
	require.True(t, ok)
	assert.Equal(t, int64(53), key.D)
}

func TestWizard_RejectsMessage(t *testing.T) {
	w := newWizard(t)
	enter(t, w, "7")
	enter(t, w, "11")
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	enter(t, w, "17")

	w.SetInput("   ")
	assert.ErrorIs(t, w.Next(), ErrEmptyMessage)

	// 'a' = 97 >= n = 77
	w.SetInput("a")
	assert.ErrorIs(t, w.Next(), rsakey.ErrMessageOutOfRange)
	assert.Equal(t, 5, w.View().Index)

	w.SetInput("A\xff")
	assert.ErrorIs(t, w.Next(), rsakey.ErrInvalidText)
	assert.Equal(t, 5, w.View().Index)

	enter(t, w, "AB")
	assert.Equal(t, "Encryption", w.View().Title)
}

func TestWizard_PreviousRestoresCommittedValues(t *testing.T) {
	var hooks int
	w := newWizard(t, WithKeyHook(func(rsakey.KeyMaterial) { hooks++ }))
	enter(t, w, "7")
	enter(t, w, "11")
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	enter(t, w, "17")
	enter(t, w, "AB")

	require.True(t, w.Previous())
	assert.Equal(t, "AB", w.View().Value)

	require.True(t, w.Previous())
	assert.Equal(t, "17", w.View().Value)

	require.True(t, w.Previous())
	require.True(t, w.Previous())
	require.True(t, w.Previous())
	assert.Equal(t, "11", w.View().Value)

	require.True(t, w.Previous())
	assert.Equal(t, "7", w.View().Value)
	assert.False(t, w.Previous())

	// Возврат назад не пересчитывает ключ
	assert.Equal(t, 1, hooks)
	key, ok := w.Key()
	require.True(t, ok)
	assert.Equal(t, int64(53), key.D)

	// Повторный проход с теми же значениями
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	assert.Equal(t, []string{"n = 7 * 11 = 77"}, w.View().Lines)
}

func TestWizard_NewPrimeDropsKey(t *testing.T) {
	var hooked []rsakey.KeyMaterial
	w := newWizard(t, WithKeyHook(func(k rsakey.KeyMaterial) { hooked = append(hooked, k) }))
	enter(t, w, "7")
	enter(t, w, "11")
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	enter(t, w, "17")

	_, ok := w.Key()
	require.True(t, ok)

	// назад к p, меняем на 13
	for w.View().Index > 0 {
		require.True(t, w.Previous())
	}
	enter(t, w, "13")

	_, ok = w.Key()
	assert.False(t, ok, "key for p=7 must not survive p=13")

	// тот же q не возвращает старый ключ
	enter(t, w, "11")
	_, ok = w.Key()
	assert.False(t, ok)

	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	assert.Empty(t, w.View().Value, "exponent has to be entered again")

	// φ = 12 * 10 = 120, e = 7
	enter(t, w, "7")
	key, ok := w.Key()
	require.True(t, ok)
	assert.Equal(t, int64(13), key.P)
	assert.Equal(t, int64(11), key.Q)
	assert.Equal(t, int64(103), key.D)
	require.Len(t, hooked, 2)
}

func TestWizard_SamePrimeKeepsKey(t *testing.T) {
	w := newWizard(t)
	enter(t, w, "7")
	enter(t, w, "11")
	require.NoError(t, w.Next())
	require.NoError(t, w.Next())
	enter(t, w, "17")

	for w.View().Index > 0 {
		require.True(t, w.Previous())
	}
	enter(t, w, "7")

	key, ok := w.Key()
	require.True(t, ok)
	assert.Equal(t, int64(53), key.D)
}

func TestWizard_Reset(t *testing.T) {
	w := newWizard(t)
	enter(t, w, "7")
	enter(t, w, "11")

	w.Reset()
	v := w.View()
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, "7", v.Value)
}
