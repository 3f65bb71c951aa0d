package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

func TestParseJSON_CleanObject(t *testing.T) {
	out, err := ParseJSON[samplePayload](`{"summary": "内容", "tags": ["a", "b"]}`)

	require.NoError(t, err)
	assert.Equal(t, "内容", out.Summary)
	assert.Equal(t, []string{"a", "b"}, out.Tags)
}

func TestParseJSON_IgnoresSurroundingProse(t *testing.T) {
	response := "好的，以下是结果：\n```json\n{\"summary\": \"内容\"}\n```\n希望对你有帮助。"

	out, err := ParseJSON[samplePayload](response)

	require.NoError(t, err)
	assert.Equal(t, "内容", out.Summary)
}

func TestParseJSON_NoObject(t *testing.T) {
	_, err := ParseJSON[samplePayload]("没有任何结构化内容")
	assert.Error(t, err)
}

func TestParseJSON_MalformedObject(t *testing.T) {
	_, err := ParseJSON[samplePayload](`{"summary": `)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "短文本", Truncate("短文本", 10))
	assert.Equal(t, "一二三...", Truncate("一二三四五", 3))
	assert.Equal(t, "", Truncate("anything", 0))
}
