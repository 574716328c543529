package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderCollectsLevels(t *testing.T) {
	rec := NewRecorder()
	assert.False(t, rec.HasData())

	rec.AddWarning("row skipped")
	rec.AddError("bad envelope")
	rec.AddData("raw row")

	assert.True(t, rec.HasData())
	assert.Equal(t, []string{"row skipped"}, rec.Messages(LevelWarning))
	assert.Equal(t, []string{"bad envelope"}, rec.Messages(LevelError))
	assert.Len(t, rec.Entries(), 3)
}

func TestLoggerNilSafe(t *testing.T) {
	log := NewLogger(nil)
	assert.False(t, log.HasData())
	log.AddInfo("something")
	assert.True(t, log.HasData())
}
