package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/awsmp/internal/cmd/table"
)

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "yaml", "JSON", ""} {
		_, err := ParseFormat(valid)
		assert.NoError(t, err, valid)
	}

	_, err := ParseFormat("wide")
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&JSONFormatter{Indent: "  "}).Format(&buf, map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "value"}`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	err := (&YAMLFormatter{}).Format(&buf, map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", buf.String())
}

func TestTableFormatterRendersData(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, table.Data{
		Headers: []string{"Entity Id", "Name"},
		Rows:    [][]string{{"prod-1", "Ubuntu 24.04"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "prod-1")
	assert.Contains(t, buf.String(), "Ubuntu 24.04")
}

func TestTableFormatterStructSlice(t *testing.T) {
	type row struct {
		EntityID string `json:"entity_id"`
		Name     string `json:"name"`
	}

	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, []row{{EntityID: "prod-1", Name: "Ubuntu"}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "prod-1")
	assert.Contains(t, out, "Ubuntu")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	err := (&TableFormatter{}).Format(&buf, map[string]int{"count": 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"))
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("yaml"))
	assert.Equal(t, FormatTable, DetectFormat("TABLE"))
}
