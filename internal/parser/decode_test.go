package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBytesPlainUTF8(t *testing.T) {
	text, err := DecodeBytes([]byte("Vertretungsplan"), "")
	require.NoError(t, err)
	assert.Equal(t, "Vertretungsplan", text)
}

func TestDecodeBytesStripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("plan")...)
	text, err := DecodeBytes(raw, "")
	require.NoError(t, err)
	assert.Equal(t, "plan", text)
}

func TestDecodeBytesFallsThroughToLatin1(t *testing.T) {
	// 0xE4 is "ä" in Latin-1 and not valid UTF-8 on its own, so the chain
	// has to fall through both UTF-8 attempts.
	raw := []byte{'K', 'l', 0xE4, 's', 's', 'e'}
	text, err := DecodeBytes(raw, "")
	require.NoError(t, err)
	assert.Equal(t, "Klässe", text)
}

func TestDecodeBytesNamedEncodingIsExclusive(t *testing.T) {
	raw := []byte{0xE4}
	_, err := DecodeBytes(raw, "utf-8")
	assert.ErrorIs(t, err, ErrDecode)

	text, err := DecodeBytes(raw, "latin-1")
	require.NoError(t, err)
	assert.Equal(t, "ä", text)
}

func TestDecodeBytesUnknownEncoding(t *testing.T) {
	_, err := DecodeBytes([]byte("x"), "klingon")
	assert.ErrorIs(t, err, ErrDecode)
}
