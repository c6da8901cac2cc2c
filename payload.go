package driftcore

import (
	"github.com/reoring/driftcore/internal/canon"
	"github.com/reoring/driftcore/internal/digest"
	"github.com/reoring/driftcore/internal/engine"
	"github.com/reoring/driftcore/internal/pbstruct"
	"github.com/reoring/driftcore/internal/schema"
)

// ExportPayloadResult holds every artifact derived from one export payload.
type ExportPayloadResult struct {
	NormalizedJSON      string `json:"normalized_json"`
	DecodedJSON         string `json:"decoded_json"`
	DecodedValueHash    string `json:"decoded_value_hash"`
	DecodedSchemaJSON   string `json:"decoded_schema_json"`
	DecodedSchemaHash   string `json:"decoded_schema_hash"`
	ProtobufStructBytes []byte `json:"protobuf_struct_bytes"`
}

// ProcessExportPayload canonicalizes payloadJSON, applies the optional
// schema merges to its top-level fields, infers a schema of the decoded
// value and hashes both. The Struct bytes always describe the undecoded
// payload; a non-object payload yields an empty Struct.
//
// Malformed merges fail with a KindParse error.
func ProcessExportPayload(payloadJSON string, schemaMergesJSON *string, opts ...ParseOpt) (*ExportPayloadResult, error) {
	opt := normalizeOpt(opts)
	data := []byte(payloadJSON)
	normalized, err := engine.Parse(data, opt.engineOptions())
	if err != nil {
		return nil, fromParse(data, err)
	}

	merges := schema.Merges{}
	if schemaMergesJSON != nil {
		merges, err = schema.ParseMerges([]byte(*schemaMergesJSON))
		if err != nil {
			return nil, &Error{Kind: KindParse, Code: CodeParseError, Path: "/", Offset: -1, Message: "invalid schema merges", Err: err}
		}
	}
	decoded := schema.ApplyMerges(normalized, merges, opt.engineOptions())

	sch, err := schema.Generate(&decoded, merges)
	if err != nil {
		return nil, encodingError(err)
	}

	res := &ExportPayloadResult{}
	if res.NormalizedJSON, _, err = canonicalAndHash(normalized); err != nil {
		return nil, err
	}
	if res.DecodedJSON, res.DecodedValueHash, err = canonicalAndHash(&decoded); err != nil {
		return nil, err
	}
	if res.DecodedSchemaJSON, res.DecodedSchemaHash, err = canonicalAndHash(&sch); err != nil {
		return nil, err
	}

	s, err := pbstruct.ObjectStruct(normalized)
	if err != nil {
		return nil, encodingError(err)
	}
	if res.ProtobufStructBytes, err = pbstruct.MarshalMessage(s); err != nil {
		return nil, encodingError(err)
	}
	return res, nil
}

func canonicalAndHash(v *engine.Value) (string, string, error) {
	b, err := canon.Marshal(v)
	if err != nil {
		return "", "", encodingError(err)
	}
	return string(b), digest.SumSHA256(b).String(), nil
}
