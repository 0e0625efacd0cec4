package app

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  C-100  \n"))

	got, err := GetSimpleText(r, "Scan card", &out)
	require.NoError(t, err)
	assert.Equal(t, "C-100", got)
	assert.Contains(t, out.String(), "Scan card")
}

func TestGetSimpleText_EOFWithPartialLine(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("C-200"))

	got, err := GetSimpleText(r, "Scan card", &out)
	require.NoError(t, err)
	assert.Equal(t, "C-200", got)
}

func TestGetInt(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("42\nabc\n"))

	n, err := GetInt(r, "Enter field id", &out)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = GetInt(r, "Enter field id", &out)
	assert.Error(t, err)
}

func TestGetSecret(t *testing.T) {
	orig := readPassword
	readPassword = func(fd int) ([]byte, error) { return []byte("hunter2"), nil }
	t.Cleanup(func() { readPassword = orig })

	var out bytes.Buffer
	secret, err := GetSecret(&out, "Enter device secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("hunter2"), secret)
	assert.Contains(t, out.String(), "Enter device secret")
}
