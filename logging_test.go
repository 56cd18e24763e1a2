package outline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriterLogger(&out, &errOut, "outline", false)

	l.Debugf("hidden %d", 1)
	assert.Empty(t, out.String())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("skipped frame at %s", "jfa_pass")
	l.Infof("resized to %s", "64x64")
	l.Warnf("slow compile")
	l.Errorf("compile failed")

	assert.Contains(t, out.String(), "[outline] DEBUG: skipped frame at jfa_pass")
	assert.Contains(t, out.String(), "[outline] INFO: resized to 64x64")
	assert.NotContains(t, out.String(), "WARN")
	assert.Contains(t, errOut.String(), "[outline] WARN: slow compile")
	assert.Contains(t, errOut.String(), "[outline] ERROR: compile failed")
}

func TestDefaultLogger_NoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewWriterLogger(&out, &out, "", false)
	l.Infof("ready")
	assert.Contains(t, out.String(), " INFO: ready")
	assert.NotContains(t, out.String(), "[")
}
