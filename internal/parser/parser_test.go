package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()
	registry.Register(".csv", func(path string) Parser { return nil })

	_, err := registry.ForFile("/plans/heute.CSV")
	assert.NoError(t, err)

	_, err = registry.ForFile("/plans/heute.docx")
	assert.Error(t, err)
}

func TestHourRange(t *testing.T) {
	first, last, err := HourRange("3-5")
	require.NoError(t, err)
	assert.Equal(t, 3, first)
	assert.Equal(t, 5, last)

	first, last, err = HourRange(" 4. ")
	require.NoError(t, err)
	assert.Equal(t, 4, first)
	assert.Equal(t, 4, last)

	_, _, err = HourRange("drei")
	assert.Error(t, err)
}

func TestCleanCell(t *testing.T) {
	assert.Equal(t, "", CleanCell("   "))
	assert.Equal(t, "C12", CleanCell("C12"))
}
