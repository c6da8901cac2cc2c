package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	json "github.com/goccy/go-json"

	"github.com/reoring/driftcore"
	"github.com/reoring/driftcore/internal/config"
)

// Version information
const Version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Config   string `help:"Path to a YAML config file. Defaults to driftcore.yml found in the working directory or its parents." short:"c"`
	MaxDepth int    `help:"Maximum nesting depth, negative for unlimited (overrides config when non-zero)." name:"max-depth"`
	MaxBytes int64  `help:"Maximum input size in bytes (overrides config when positive)." name:"max-bytes"`
	Format   string `help:"Output format: text or json (overrides config)." short:"f"`
	Debug    bool   `help:"Enable debug logging." short:"d"`

	StrictDuplicates bool `help:"Reject objects with repeated keys instead of keeping the last value (overrides config)." name:"strict-duplicates"`

	Normalize        NormalizeCmd        `cmd:"" help:"Print the canonical JSON form."`
	Hash             HashCmd             `cmd:"" help:"Print the digest of the canonical form."`
	NormalizeAndHash NormalizeAndHashCmd `cmd:"" name:"normalize-and-hash" help:"Print the canonical form and its SHA-256 digest."`
	EncodeStruct     EncodeStructCmd     `cmd:"" name:"encode-struct" help:"Write the deterministic binary encoding."`
	FieldCount       FieldCountCmd       `cmd:"" name:"field-count" help:"Print the number of top-level fields of an object."`
	ExportPayload    ExportPayloadCmd    `cmd:"" name:"export-payload" help:"Process an export payload with optional schema merges."`
	Smoke            SmokeCmd            `cmd:"" help:"Run every entry point over a fixture's input and check consistency."`
	Version          VersionCmd          `cmd:"" help:"Show version information."`
}

// runContext carries resolved settings into command Run methods.
type runContext struct {
	cfg    *config.Config
	opt    driftcore.ParseOpt
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

// InputArg is the shared positional input; empty or "-" reads stdin.
type InputArg struct {
	Input string `arg:"" optional:"" help:"Path to input JSON file. Reads stdin when omitted or '-'."`
}

func (a InputArg) read(rc *runContext) (string, error) {
	if a.Input == "" || a.Input == "-" {
		rc.logger.Debug("reading input", "source", "stdin")
		b, err := io.ReadAll(rc.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	rc.logger.Debug("reading input", "source", a.Input)
	b, err := os.ReadFile(a.Input)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(b), nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("driftcore"),
		kong.Description("Deterministic JSON canonicalization, hashing and protobuf Struct encoding"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	rc, err := newRunContext(&cli, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if err := kctx.Run(rc); err != nil {
		rc.logger.Debug("command failed", "command", kctx.Command(), "error", err)
		fmt.Fprintf(stderr, "%s\n", driftcore.UserMessage(err))
		return 1
	}
	return 0
}

func newRunContext(cli *CLI, stdin io.Reader, stdout, stderr io.Writer) (*runContext, error) {
	path := cli.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cli.MaxDepth != 0 {
		cfg.Limits.MaxDepth = cli.MaxDepth
	}
	if cli.MaxBytes > 0 {
		cfg.Limits.MaxBytes = cli.MaxBytes
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}
	if cli.Debug {
		cfg.Debug = true
	}
	if cli.StrictDuplicates {
		cfg.Limits.OnDuplicateKey = config.DuplicateError
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	logger.Debug("configuration loaded",
		"config_file", path,
		"max_depth", cfg.Limits.MaxDepth,
		"max_bytes", cfg.Limits.MaxBytes,
		"on_duplicate_key", cfg.Limits.OnDuplicateKey,
		"algorithm", cfg.Digest.Algorithm,
		"format", cfg.Output.Format,
	)

	return &runContext{
		cfg:    cfg,
		opt:    parseOpt(cfg),
		logger: logger,
		stdin:  stdin,
		stdout: stdout,
	}, nil
}

func parseOpt(cfg *config.Config) driftcore.ParseOpt {
	opt := driftcore.ParseOpt{MaxDepth: cfg.Limits.MaxDepth, MaxBytes: cfg.Limits.MaxBytes}
	if cfg.StrictDuplicates() {
		opt.OnDuplicateKey = driftcore.DuplicateError
	}
	return opt
}

func (rc *runContext) jsonOutput() bool { return rc.cfg.Output.Format == config.FormatJSON }

func (rc *runContext) writeJSON(v any) error {
	enc := json.NewEncoder(rc.stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (rc *runContext) parse(in InputArg) (*driftcore.Document, error) {
	text, err := in.read(rc)
	if err != nil {
		return nil, err
	}
	return driftcore.Parse(text, rc.opt)
}

// NormalizeCmd prints the canonical form.
type NormalizeCmd struct {
	InputArg
}

func (c *NormalizeCmd) Run(rc *runContext) error {
	doc, err := rc.parse(c.InputArg)
	if err != nil {
		return err
	}
	normalized, err := doc.Normalize()
	if err != nil {
		return err
	}
	if rc.jsonOutput() {
		return rc.writeJSON(map[string]any{"normalized": normalized})
	}
	_, err = fmt.Fprintln(rc.stdout, normalized)
	return err
}

// HashCmd prints the content address.
type HashCmd struct {
	InputArg
	Algorithm string `help:"Digest algorithm: sha256 or blake3 (overrides config)." short:"a"`
}

func (c *HashCmd) Run(rc *runContext) error {
	doc, err := rc.parse(c.InputArg)
	if err != nil {
		return err
	}
	alg := c.Algorithm
	if alg == "" {
		alg = rc.cfg.Digest.Algorithm
	}
	h, err := doc.HashWith(alg)
	if err != nil {
		return err
	}
	if rc.jsonOutput() {
		return rc.writeJSON(map[string]any{"algorithm": strings.ToLower(alg), "hash": h})
	}
	_, err = fmt.Fprintln(rc.stdout, h)
	return err
}

// NormalizeAndHashCmd prints both artifacts from a single parse.
type NormalizeAndHashCmd struct {
	InputArg
}

func (c *NormalizeAndHashCmd) Run(rc *runContext) error {
	doc, err := rc.parse(c.InputArg)
	if err != nil {
		return err
	}
	normalized, h, err := doc.NormalizeAndHash()
	if err != nil {
		return err
	}
	if rc.jsonOutput() {
		return rc.writeJSON(map[string]any{"normalized": normalized, "hash": h})
	}
	_, err = fmt.Fprintf(rc.stdout, "%s\n%s\n", normalized, h)
	return err
}

// EncodeStructCmd writes the binary encoding.
type EncodeStructCmd struct {
	InputArg
	Encoding string `help:"Binary encoding: proto or cbor." enum:"proto,cbor" default:"proto" name:"encoding"`
	Hex      bool   `help:"Write lowercase hex instead of raw bytes."`
}

func (c *EncodeStructCmd) Run(rc *runContext) error {
	doc, err := rc.parse(c.InputArg)
	if err != nil {
		return err
	}
	var b []byte
	switch c.Encoding {
	case "cbor":
		b, err = doc.EncodeCBOR()
	default:
		b, err = doc.EncodeStruct()
	}
	if err != nil {
		return err
	}
	rc.logger.Debug("encoded", "encoding", c.Encoding, "bytes", len(b))
	if rc.jsonOutput() {
		return rc.writeJSON(map[string]any{"encoding": c.Encoding, "hex": hex.EncodeToString(b)})
	}
	if c.Hex {
		_, err = fmt.Fprintln(rc.stdout, hex.EncodeToString(b))
		return err
	}
	_, err = rc.stdout.Write(b)
	return err
}

// FieldCountCmd prints the number of top-level fields.
type FieldCountCmd struct {
	InputArg
}

func (c *FieldCountCmd) Run(rc *runContext) error {
	doc, err := rc.parse(c.InputArg)
	if err != nil {
		return err
	}
	n, err := doc.FieldCount()
	if err != nil {
		return err
	}
	if rc.jsonOutput() {
		return rc.writeJSON(map[string]any{"field_count": n})
	}
	_, err = fmt.Fprintln(rc.stdout, n)
	return err
}

// ExportPayloadCmd runs export payload processing.
type ExportPayloadCmd struct {
	InputArg
	Merges string `help:"Path to a JSON file of per-field schema merges." short:"m"`
}

func (c *ExportPayloadCmd) Run(rc *runContext) error {
	text, err := c.read(rc)
	if err != nil {
		return err
	}
	var merges *string
	if c.Merges != "" {
		b, err := os.ReadFile(c.Merges)
		if err != nil {
			return fmt.Errorf("failed to read merges file: %w", err)
		}
		s := string(b)
		merges = &s
	}
	res, err := driftcore.ProcessExportPayload(text, merges, rc.opt)
	if err != nil {
		return err
	}
	if rc.jsonOutput() {
		return rc.writeJSON(res)
	}
	_, err = fmt.Fprintf(rc.stdout,
		"normalized: %s\ndecoded: %s\ndecoded_hash: %s\nschema: %s\nschema_hash: %s\nstruct: %s\n",
		res.NormalizedJSON, res.DecodedJSON, res.DecodedValueHash,
		res.DecodedSchemaJSON, res.DecodedSchemaHash, hex.EncodeToString(res.ProtobufStructBytes))
	return err
}

// SmokeCmd checks that every entry point agrees on a fixture.
type SmokeCmd struct {
	Fixture string `arg:"" help:"Path to a fixture file with an \"input\" member."`
}

// SmokeReport is the outcome of a smoke run.
type SmokeReport struct {
	Normalized  string `json:"normalized"`
	Hash        string `json:"hash"`
	StructBytes int    `json:"struct_bytes"`
	FieldCount  *int   `json:"field_count,omitempty"`
}

var errSmoke = errors.New("smoke check failed")

func (c *SmokeCmd) Run(rc *runContext) error {
	raw, err := os.ReadFile(c.Fixture)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}
	report, err := runSmoke(raw)
	if err != nil {
		return err
	}
	rc.logger.Debug("smoke passed", "fixture", c.Fixture, "hash", report.Hash)
	if rc.jsonOutput() {
		return rc.writeJSON(report)
	}
	_, err = fmt.Fprintf(rc.stdout, "ok %s %s\n", report.Hash, report.Normalized)
	return err
}

func runSmoke(fixture []byte) (*SmokeReport, error) {
	var f struct {
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(fixture, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	if len(f.Input) == 0 {
		return nil, fmt.Errorf("%w: fixture has no input", errSmoke)
	}
	input := string(f.Input)

	normalized, err := driftcore.Normalize(input)
	if err != nil {
		return nil, err
	}
	h, err := driftcore.Hash(input)
	if err != nil {
		return nil, err
	}
	n2, h2, err := driftcore.NormalizeAndHash(input)
	if err != nil {
		return nil, err
	}
	if n2 != normalized || h2 != h {
		return nil, fmt.Errorf("%w: normalize_and_hash disagrees with normalize/hash", errSmoke)
	}
	if len(h) != 64 || strings.ToLower(h) != h {
		return nil, fmt.Errorf("%w: hash %q is not 64 lowercase hex characters", errSmoke, h)
	}
	again, err := driftcore.Normalize(normalized)
	if err != nil {
		return nil, err
	}
	if again != normalized {
		return nil, fmt.Errorf("%w: normalization is not idempotent", errSmoke)
	}

	b1, err := driftcore.EncodeStruct(input)
	if err != nil {
		return nil, err
	}
	b2, err := driftcore.EncodeStruct(normalized)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(b1, b2) {
		return nil, fmt.Errorf("%w: struct encoding differs between input and canonical form", errSmoke)
	}

	report := &SmokeReport{Normalized: normalized, Hash: h, StructBytes: len(b1)}
	n, err := driftcore.StructFieldCount(input)
	switch {
	case err == nil:
		report.FieldCount = &n
	case errors.Is(err, driftcore.ErrType):
	default:
		return nil, err
	}
	return report, nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(rc *runContext) error {
	_, err := fmt.Fprintf(rc.stdout, "driftcore version %s\n", Version)
	return err
}
