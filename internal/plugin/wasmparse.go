package plugin

import (
	"encoding/binary"
	"fmt"
)

// Minimal WebAssembly binary-format section scanner: enough to pull
// out the three cubedaw custom sections, validate the plugin's import
// signatures against the fixed host ABI (§4.F/§6), and list the
// module's exports. It does not read the function section, so a node
// export's own signature is not checked here. This is NOT a full
// WASM validator — wazero (the runtime collaborator, per spec.md §1)
// does that when the module is compiled; this parser only extracts
// the structural facts the plugin-preparation step needs before
// handing the raw bytes to wazero.

// valueType mirrors the WASM binary encoding of value types.
type valueType byte

const (
	valTypeI32   valueType = 0x7F
	valTypeI64   valueType = 0x7E
	valTypeF32   valueType = 0x7D
	valTypeF64   valueType = 0x7C
	valTypeV128  valueType = 0x7B
	valTypeFuncRef valueType = 0x70
	valTypeExternRef valueType = 0x6F
)

const (
	sectionCustom   = 0
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionTable    = 4
	sectionMemory   = 5
	sectionGlobal   = 6
	sectionExport   = 7
	sectionStart    = 8
	sectionElement  = 9
	sectionCode     = 10
	sectionData     = 11
)

var wasmMagic = [4]byte{0x00, 0x61, 0x73, 0x6D}

type funcType struct {
	params  []valueType
	results []valueType
}

const (
	importKindFunc   byte = 0
	importKindTable  byte = 1
	importKindMemory byte = 2
	importKindGlobal byte = 3
)

type importEntry struct {
	module  string
	name    string
	kind    byte
	typeIdx uint32 // only meaningful when kind == importKindFunc
}

type exportEntry struct {
	name string
	kind byte
	idx  uint32
}

type customSection struct {
	name string
	data []byte
}

// moduleInfo is the result of scanning a module's bytes.
type moduleInfo struct {
	types   []funcType
	imports []importEntry
	exports []exportEntry
	customs []customSection
}

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) eof() bool { return r.pos >= len(r.b) }

func (r *byteReader) byte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, fmt.Errorf("%w: unexpected end of section", ErrInvalidPlugin)
	}
	v := r.b[r.pos]
	r.pos++
	return v, nil
}

func (r *byteReader) bytesN(n int) ([]byte, error) {
	if r.pos+n > len(r.b) {
		return nil, fmt.Errorf("%w: unexpected end of section", ErrInvalidPlugin)
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) varU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.byte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, fmt.Errorf("%w: LEB128 u32 too long", ErrInvalidPlugin)
		}
	}
}

func (r *byteReader) name() (string, error) {
	n, err := r.varU32()
	if err != nil {
		return "", err
	}
	b, err := r.bytesN(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseModule scans wasm for its section table, decoding the type,
// import, and export sections fully and collecting every custom
// section's raw (name, payload) verbatim.
func parseModule(wasm []byte) (*moduleInfo, error) {
	if len(wasm) < 8 {
		return nil, fmt.Errorf("%w: too short to be a wasm module", ErrInvalidPlugin)
	}
	var magic [4]byte
	copy(magic[:], wasm[:4])
	if magic != wasmMagic {
		return nil, fmt.Errorf("%w: bad magic number", ErrInvalidPlugin)
	}
	version := binary.LittleEndian.Uint32(wasm[4:8])
	if version != 1 {
		return nil, fmt.Errorf("%w: unsupported wasm version %d", ErrInvalidPlugin, version)
	}

	info := &moduleInfo{}
	r := &byteReader{b: wasm, pos: 8}
	for !r.eof() {
		id, err := r.byte()
		if err != nil {
			return nil, err
		}
		size, err := r.varU32()
		if err != nil {
			return nil, err
		}
		payload, err := r.bytesN(int(size))
		if err != nil {
			return nil, err
		}
		switch id {
		case sectionCustom:
			cr := &byteReader{b: payload}
			name, err := cr.name()
			if err != nil {
				return nil, err
			}
			info.customs = append(info.customs, customSection{name: name, data: payload[cr.pos:]})
		case sectionType:
			types, err := parseTypeSection(payload)
			if err != nil {
				return nil, err
			}
			info.types = types
		case sectionImport:
			imports, err := parseImportSection(payload)
			if err != nil {
				return nil, err
			}
			info.imports = imports
		case sectionExport:
			exports, err := parseExportSection(payload)
			if err != nil {
				return nil, err
			}
			info.exports = exports
		default:
			// function/table/memory/global/start/element/code/data: not
			// needed for preparation-time validation; wazero parses
			// these fully when the module is actually compiled.
		}
	}
	return info, nil
}

func parseTypeSection(payload []byte) ([]funcType, error) {
	r := &byteReader{b: payload}
	count, err := r.varU32()
	if err != nil {
		return nil, err
	}
	out := make([]funcType, 0, count)
	for i := uint32(0); i < count; i++ {
		form, err := r.byte()
		if err != nil {
			return nil, err
		}
		if form != 0x60 {
			return nil, fmt.Errorf("%w: unexpected type form 0x%x", ErrInvalidPlugin, form)
		}
		nParams, err := r.varU32()
		if err != nil {
			return nil, err
		}
		params := make([]valueType, nParams)
		for j := range params {
			b, err := r.byte()
			if err != nil {
				return nil, err
			}
			params[j] = valueType(b)
		}
		nResults, err := r.varU32()
		if err != nil {
			return nil, err
		}
		results := make([]valueType, nResults)
		for j := range results {
			b, err := r.byte()
			if err != nil {
				return nil, err
			}
			results[j] = valueType(b)
		}
		out = append(out, funcType{params: params, results: results})
	}
	return out, nil
}

func parseImportSection(payload []byte) ([]importEntry, error) {
	r := &byteReader{b: payload}
	count, err := r.varU32()
	if err != nil {
		return nil, err
	}
	out := make([]importEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		mod, err := r.name()
		if err != nil {
			return nil, err
		}
		nm, err := r.name()
		if err != nil {
			return nil, err
		}
		kind, err := r.byte()
		if err != nil {
			return nil, err
		}
		entry := importEntry{module: mod, name: nm, kind: kind}
		switch kind {
		case importKindFunc:
			idx, err := r.varU32()
			if err != nil {
				return nil, err
			}
			entry.typeIdx = idx
		case importKindTable:
			if _, err := r.byte(); err != nil { // elem type
				return nil, err
			}
			if err := skipLimits(r); err != nil {
				return nil, err
			}
		case importKindMemory:
			if err := skipLimits(r); err != nil {
				return nil, err
			}
		case importKindGlobal:
			if _, err := r.byte(); err != nil { // val type
				return nil, err
			}
			if _, err := r.byte(); err != nil { // mutability
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: unknown import kind %d", ErrInvalidPlugin, kind)
		}
		out = append(out, entry)
	}
	return out, nil
}

func skipLimits(r *byteReader) error {
	flags, err := r.byte()
	if err != nil {
		return err
	}
	if _, err := r.varU32(); err != nil { // min
		return err
	}
	if flags&0x01 != 0 {
		if _, err := r.varU32(); err != nil { // max
			return err
		}
	}
	return nil
}

func parseExportSection(payload []byte) ([]exportEntry, error) {
	r := &byteReader{b: payload}
	count, err := r.varU32()
	if err != nil {
		return nil, err
	}
	out := make([]exportEntry, 0, count)
	for i := uint32(0); i < count; i++ {
		nm, err := r.name()
		if err != nil {
			return nil, err
		}
		kind, err := r.byte()
		if err != nil {
			return nil, err
		}
		idx, err := r.varU32()
		if err != nil {
			return nil, err
		}
		out = append(out, exportEntry{name: nm, kind: kind, idx: idx})
	}
	return out, nil
}
