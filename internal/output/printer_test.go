package output

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"", "default", "raw", "json", "yaml"} {
		_, err := ParseFormat(ok)
		assert.NoError(t, err, "format %q", ok)
	}
	for _, bad := range []string{"table", "JSON", "xml", "jsonl"} {
		_, err := ParseFormat(bad)
		assert.Error(t, err, "format %q", bad)
	}
}

func TestPrint_RawPassesBodyThrough(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Out: &out, Err: io.Discard, Format: FormatRaw}
	require.NoError(t, p.Print([]byte(`{"server":{"id":1}}`), nil))
	assert.Equal(t, `{"server":{"id":1}}`+"\n", out.String())
}

func TestPrint_JSONRoundTrips(t *testing.T) {
	body := []byte(`{"server": {"id": 105, "name": "web", "cpu": 4, "tags": ["a", "b"]}}`)

	var out bytes.Buffer
	p := Printer{Out: &out, Err: io.Discard, Format: FormatJSON}
	require.NoError(t, p.Print(body, nil))

	var want, got any
	require.NoError(t, json.Unmarshal(body, &want))
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestPrint_YAMLRoundTrips(t *testing.T) {
	body := []byte(`{"vpcs": [{"id": "vpc-1", "subnet_v4": "192.168.0.0/24"}, {"id": "vpc-2", "subnet_v4": "10.0.5.0/24"}]}`)

	var out bytes.Buffer
	p := Printer{Out: &out, Err: io.Discard, Format: FormatYAML}
	require.NoError(t, p.Print(body, nil))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))

	vpcs, ok := got["vpcs"].([]any)
	require.True(t, ok)
	require.Len(t, vpcs, 2)
	first := vpcs[0].(map[string]any)
	assert.Equal(t, "vpc-1", first["id"])
	assert.Equal(t, "192.168.0.0/24", first["subnet_v4"])
}

func TestPrint_DefaultUsesTableFunc(t *testing.T) {
	var out bytes.Buffer
	p := Printer{Out: &out, Err: io.Discard, Format: FormatDefault}
	err := p.Print([]byte(`{}`), func(w io.Writer) error {
		tbl := &Table{}
		tbl.Header("ID", "NAME")
		tbl.Row(1, "web")
		tbl.Render(w)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "web")
}

func TestPrint_DefaultFallsBackToJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	p := Printer{Out: &out, Err: &errOut, Format: FormatDefault}
	err := p.Print([]byte(`{"id": 1}`), func(w io.Writer) error {
		return assert.AnError
	})
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "falling back to JSON")
	assert.Contains(t, out.String(), `"id"`)
}

func TestTable_Alignment(t *testing.T) {
	tbl := &Table{}
	tbl.Header("ID", "NAME", "STATUS")
	tbl.Row(1, "a-very-long-name", "on")
	tbl.Row(12345, "db", "off")

	var out bytes.Buffer
	tbl.Render(&out)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	// Columns align: NAME starts at the same offset on every line.
	assert.Equal(t, bytes.Index(lines[1], []byte("a-very-long-name")), bytes.Index(lines[2], []byte("db")))
}

func TestTable_EmptyRendersNothing(t *testing.T) {
	var out bytes.Buffer
	(&Table{}).Render(&out)
	assert.Empty(t, out.String())
}
