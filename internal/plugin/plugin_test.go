package plugin

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

// leb128 encodes an unsigned LEB128 varint, mirroring byteReader.varU32's
// decoding so tests can hand-build minimal wasm modules.
func leb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func wasmName(s string) []byte {
	return append(leb128(uint32(len(s))), []byte(s)...)
}

func customSectionBytes(name string, payload []byte) []byte {
	body := append(wasmName(name), payload...)
	return append([]byte{sectionCustom}, append(leb128(uint32(len(body))), body...)...)
}

func moduleWithCustomSections(sections ...[]byte) []byte {
	out := append([]byte{}, wasmMagic[:]...)
	out = append(out, 0x01, 0x00, 0x00, 0x00) // version 1
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func versionSection(v string) []byte {
	return customSectionBytes(customSectionVersion, []byte(v))
}

func nodeListSection(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	payload, err := cbor.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal node list: %v", err)
	}
	return customSectionBytes(customSectionNodeList, payload)
}

func metaSection(t *testing.T, fields map[string]string) []byte {
	t.Helper()
	payload, err := cbor.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal meta: %v", err)
	}
	return customSectionBytes(customSectionMeta, payload)
}

func TestParseModuleRejectsBadMagic(t *testing.T) {
	_, err := parseModule([]byte("not a wasm file"))
	if !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin, got %v", err)
	}
}

func TestParseModuleRejectsTruncated(t *testing.T) {
	_, err := parseModule([]byte{0x00, 0x61})
	if !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin, got %v", err)
	}
}

func TestParseVersionMissingSection(t *testing.T) {
	wasm := moduleWithCustomSections()
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	if _, err := parseVersion(info); !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin for missing version section, got %v", err)
	}
}

func TestParseVersionRejectsNewerMajor(t *testing.T) {
	wasm := moduleWithCustomSections(versionSection("2.0.0"))
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	if _, err := parseVersion(info); !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin for newer major version, got %v", err)
	}
}

func TestParseVersionAcceptsOlderVersion(t *testing.T) {
	wasm := moduleWithCustomSections(versionSection("0.9.3"))
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	v, err := parseVersion(info)
	if err != nil {
		t.Fatalf("parseVersion: %v", err)
	}
	if v.String() != "0.9.3" {
		t.Errorf("got version %s, want 0.9.3", v)
	}
}

func TestParseNodeListRejectsBadResourceKey(t *testing.T) {
	wasm := moduleWithCustomSections(
		versionSection("1.0.0"),
		nodeListSection(t, map[string]string{"Not Valid": "run"}),
	)
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	if _, err := parseNodeList(info); !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin for bad resource key, got %v", err)
	}
}

func TestParseNodeListAcceptsValidKeys(t *testing.T) {
	wasm := moduleWithCustomSections(
		versionSection("1.0.0"),
		nodeListSection(t, map[string]string{"synth.basic:oscillator": "run_osc"}),
	)
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	nodes, err := parseNodeList(info)
	if err != nil {
		t.Fatalf("parseNodeList: %v", err)
	}
	if nodes["synth.basic:oscillator"] != "run_osc" {
		t.Errorf("node list missing expected entry: %v", nodes)
	}
}

func TestParseMetaMissingIsOptional(t *testing.T) {
	wasm := moduleWithCustomSections(versionSection("1.0.0"))
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	meta, err := parseMeta(info)
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta != nil {
		t.Errorf("expected nil meta when section absent, got %+v", meta)
	}
}

func TestParseMetaRejectsUnknownKey(t *testing.T) {
	wasm := moduleWithCustomSections(
		versionSection("1.0.0"),
		metaSection(t, map[string]string{"id": "synth.basic", "name": "Basic Synth", "bogus": "x"}),
	)
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	if _, err := parseMeta(info); !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin for unknown meta key, got %v", err)
	}
}

func TestParseMetaAccepted(t *testing.T) {
	wasm := moduleWithCustomSections(
		versionSection("1.0.0"),
		metaSection(t, map[string]string{"id": "synth.basic", "name": "Basic Synth"}),
	)
	info, err := parseModule(wasm)
	if err != nil {
		t.Fatalf("parseModule: %v", err)
	}
	meta, err := parseMeta(info)
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta == nil || meta.ID != "synth.basic" || meta.Name != "Basic Synth" {
		t.Errorf("unexpected meta: %+v", meta)
	}
}

func TestValidResourceKey(t *testing.T) {
	cases := []struct {
		key string
		ok  bool
	}{
		{"synth:oscillator", true},
		{"synth.basic:oscillator.sine", true},
		{"Synth:oscillator", false},
		{"synth:", false},
		{":oscillator", false},
		{"synth oscillator", false},
		{"synth:oscillator:extra", false},
	}
	for _, c := range cases {
		if got := ValidResourceKey(c.key); got != c.ok {
			t.Errorf("ValidResourceKey(%q) = %v, want %v", c.key, got, c.ok)
		}
	}
}

func TestAlignUp(t *testing.T) {
	cases := []struct{ in, want uint32 }{
		{0, 0},
		{1, 16},
		{16, 16},
		{17, 32},
		{31, 32},
		{32, 32},
	}
	for _, c := range cases {
		if got := alignUp(c.in); got != c.want {
			t.Errorf("alignUp(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestResolveImportsRejectsUnrecognisedName(t *testing.T) {
	info := &moduleInfo{
		types:   []funcType{{params: nil, results: []valueType{valTypeI32}}},
		imports: []importEntry{{module: "env", name: "mystery_func", kind: importKindFunc, typeIdx: 0}},
	}
	if _, err := resolveImports(info); !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("expected ErrInvalidPlugin for unrecognised import, got %v", err)
	}
}

func TestResolveImportsAcceptsAnyModuleNamespace(t *testing.T) {
	info := &moduleInfo{
		types:   []funcType{{params: nil, results: []valueType{valTypeI32}}},
		imports: []importEntry{{module: "whatever_namespace", name: string(HostSampleRate), kind: importKindFunc, typeIdx: 0}},
	}
	bindings, err := resolveImports(info)
	if err != nil {
		t.Fatalf("resolveImports: %v", err)
	}
	if len(bindings) != 1 || bindings[0].Module != "whatever_namespace" || bindings[0].Function != HostSampleRate {
		t.Errorf("unexpected bindings: %+v", bindings)
	}
}
