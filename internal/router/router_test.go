package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute_FileRead(t *testing.T) {
	d := Route("please show my saved research notes")
	assert.Equal(t, WorkflowFileOp, d.Workflow)
	assert.Equal(t, "read_file", d.Action)
}

func TestRoute_CodeRequest(t *testing.T) {
	d := Route("write a python script to parse CSV files")
	assert.Equal(t, WorkflowCode, d.Workflow)
}

func TestRoute_DefaultsToResearch(t *testing.T) {
	d := Route("what are the major trends in AI regulation this year")
	assert.Equal(t, WorkflowResearch, d.Workflow)
}

func TestRoute_Image(t *testing.T) {
	d := Route("generate an image of a sunset over the ocean")
	assert.Equal(t, WorkflowImage, d.Workflow)
}

func TestRoute_Confidence(t *testing.T) {
	d := Route("anything at all")
	assert.Equal(t, 1.0, d.Confidence)
}

func TestParseForced(t *testing.T) {
	fw, ok := ParseForced("energy")
	assert.True(t, ok)
	assert.Equal(t, ForcedEnergy, fw)

	_, ok = ParseForced("not_a_command")
	assert.False(t, ok)
}
