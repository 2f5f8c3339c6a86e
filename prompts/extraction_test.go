package prompts

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractionTemplate(t *testing.T) {
	msgs, err := Extraction().Format(context.Background(), map[string]any{
		"output_shape": ExtractionOutputShape,
		"content":      "Title: x\n\nUse {braces} freely",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `"analysis": {`)
	assert.Contains(t, msgs[0].Content, "**7-9**: high quality with a clear goal")
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "Use {braces} freely")
}

func TestExtractionOutputShapeIsJSON(t *testing.T) {
	assert.True(t, json.Valid([]byte(ExtractionOutputShape)))
}
