package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/driftcore"
)

const fixturePath = "../../testdata/fixtures/basic.json"

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLI_Normalize(t *testing.T) {
	code, out, errOut := runCLI(t, `{"b":2,"a":1,"c":[true,null,"x"]}`, "normalize")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "{\"a\":1,\"b\":2,\"c\":[true,null,\"x\"]}\n", out)
}

func TestCLI_NormalizeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"z":1,"a":2}`), 0o644))
	code, out, errOut := runCLI(t, "", "normalize", path)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "{\"a\":2,\"z\":1}\n", out)
}

func TestCLI_Hash(t *testing.T) {
	code, out, errOut := runCLI(t, `{"a":1,"b":2,"c":[true,null,"x"]}`, "hash")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "ee78b758140705c9412a940a152d297a342a670a702f44047a9baefea5579abb\n", out)

	code, out, errOut = runCLI(t, `{}`, "hash", "--algorithm", "blake3")
	require.Equal(t, 0, code, errOut)
	assert.Len(t, strings.TrimSpace(out), 64)
}

func TestCLI_NormalizeAndHashJSON(t *testing.T) {
	code, out, errOut := runCLI(t, `{"b":1,"a":2}`, "--format", "json", "normalize-and-hash")
	require.Equal(t, 0, code, errOut)
	var res map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, `{"a":2,"b":1}`, res["normalized"])
	h, err := driftcore.Hash(`{"a":2,"b":1}`)
	require.NoError(t, err)
	assert.Equal(t, h, res["hash"])
}

func TestCLI_EncodeStructHex(t *testing.T) {
	code, out, errOut := runCLI(t, `{"a":1}`, "encode-struct", "--hex")
	require.Equal(t, 0, code, errOut)
	want, err := driftcore.EncodeStruct(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want)+"\n", out)

	code, out, errOut = runCLI(t, `{"a":1}`, "encode-struct")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, string(want), out)

	code, out, errOut = runCLI(t, `{"a":1}`, "encode-struct", "--encoding", "cbor", "--hex")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "a1616101\n", out)
}

func TestCLI_FieldCount(t *testing.T) {
	code, out, errOut := runCLI(t, `{"x":1,"y":2,"z":3}`, "field-count")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "3\n", out)

	code, _, errOut = runCLI(t, `[1,2,3]`, "field-count")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Unsupported input")
}

func TestCLI_ParseErrorExitCode(t *testing.T) {
	code, out, errOut := runCLI(t, `{"a":}`, "normalize")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Invalid JSON at line 1, column 6")
}

func TestCLI_MaxDepthFlag(t *testing.T) {
	code, _, errOut := runCLI(t, `[[[1]]]`, "--max-depth", "2", "normalize")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "nested too deeply")
}

func TestCLI_StrictDuplicatesFlag(t *testing.T) {
	code, out, errOut := runCLI(t, `{"a":1,"a":2}`, "normalize")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "{\"a\":2}\n", out)

	code, out, errOut = runCLI(t, `{"a":1,"a":2}`, "--strict-duplicates", "normalize")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "Invalid JSON at line 1, column 8")
	assert.Contains(t, errOut, `duplicate key "a"`)
}

func TestCLI_DuplicatePolicyFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driftcore.yml")
	require.NoError(t, os.WriteFile(path, []byte("limits:\n  on_duplicate_key: error\n"), 0o644))
	code, _, errOut := runCLI(t, `{"k":[{"x":1,"x":1}]}`, "--config", path, "hash")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "duplicate key")

	require.NoError(t, os.WriteFile(path, []byte("limits:\n  on_duplicate_key: sometimes\n"), 0o644))
	code, _, errOut = runCLI(t, `{}`, "--config", path, "normalize")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "sometimes")
}

func TestCLI_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driftcore.yml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\n"), 0o644))
	code, out, errOut := runCLI(t, `{"a":1}`, "--config", path, "field-count")
	require.Equal(t, 0, code, errOut)
	assert.JSONEq(t, `{"field_count":1}`, out)
}

func TestCLI_InvalidFormat(t *testing.T) {
	code, _, errOut := runCLI(t, `{}`, "--format", "xml", "normalize")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "xml")
}

func TestCLI_ExportPayload(t *testing.T) {
	merges := filepath.Join(t.TempDir(), "merges.json")
	require.NoError(t, os.WriteFile(merges, []byte(`{"blob":{"encoding":1,"decoded_type":1}}`), 0o644))

	code, out, errOut := runCLI(t, `{"blob":"eyJrIjoidiJ9"}`, "--format", "json", "export-payload", "--merges", merges)
	require.Equal(t, 0, code, errOut)
	var res driftcore.ExportPayloadResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, `{"blob":{"k":"v"}}`, res.DecodedJSON)
	assert.NotEmpty(t, res.ProtobufStructBytes)
}

func TestCLI_Smoke(t *testing.T) {
	code, out, errOut := runCLI(t, "", "smoke", fixturePath)
	require.Equal(t, 0, code, errOut)
	assert.True(t, strings.HasPrefix(out, "ok "), out)
}

func TestRunSmoke(t *testing.T) {
	raw, err := os.ReadFile(fixturePath)
	require.NoError(t, err)
	report, err := runSmoke(raw)
	require.NoError(t, err)
	require.NotNil(t, report.FieldCount)
	assert.Equal(t, 6, *report.FieldCount)
	assert.Len(t, report.Hash, 64)
	assert.Positive(t, report.StructBytes)

	report, err = runSmoke([]byte(`{"input":[1,2]}`))
	require.NoError(t, err)
	assert.Nil(t, report.FieldCount)

	_, err = runSmoke([]byte(`{"name":"no input"}`))
	assert.ErrorIs(t, err, errSmoke)
}

func TestCLI_Version(t *testing.T) {
	code, out, _ := runCLI(t, "", "version")
	require.Equal(t, 0, code)
	assert.Equal(t, "driftcore version "+Version+"\n", out)
}
