package plugin

// FixtureSineOscResourceKey/FixtureSineOscExportName name the single
// node FixtureSineOscModule exports: a table-lookup sine oscillator
// fixed at middle C (261.625565 Hz, sample_rate=48000), used by this
// package's own invocation test and by higher-level note-synthesis
// scenario tests that need a plugin doing real signal computation
// rather than a builtin passthrough.
const (
	FixtureSineOscResourceKey = "synth:sine_osc"
	FixtureSineOscExportName  = "sine_osc"
)

// FixtureSineOscSampleRate/FixtureSineOscFrequency are the constants
// FixtureSineOscModule's precomputed table was generated against;
// callers instantiating it at a different sample rate would still run
// (the module makes no host_sample_rate call) but the tone would no
// longer measure as FixtureSineOscFrequency.
const (
	FixtureSineOscSampleRate = 48000
	FixtureSineOscFrequency  = 261.625565
)

// fixtureSineOscTableLen is the number of precomputed samples in the
// module's data section, and therefore the most the module can be
// Invoke'd (16 lanes per call) before its phase counter walks past the
// table without wrapping. One buffer's worth (256 samples, 16 calls of
// 16 lanes) is exactly what the fixture is sized for.
const fixtureSineOscTableLen = 256

// fixtureSineOscWasm is a hand-assembled WASM module (magic+version
// header, the two required cubedaw custom sections (plugin_version and
// node_list), and real type/import/
// function/memory/export/code/data sections — not just header bytes).
// Its one exported function, "sine_osc", has signature (i32, i32) ->
// () per the node ABI: it ignores its args blob, reads a 4-byte i32
// phase counter from its state blob, emits the next 16 samples of a
// 256-sample precomputed sine table (one host_output call per
// invocation, port 0), and advances the counter by 16. The table holds
// exactly sin(2*pi*FixtureSineOscFrequency*n/FixtureSineOscSampleRate)
// for n in [0, fixtureSineOscTableLen), stored as little-endian f32 in
// a one-page memory's data segment at offset 0; the function computes
// each sample's table address as (phase+lane)*4 via i32.shl rather
// than a host import, so the only import this module needs is
// "output" (module namespace "env", arbitrary per §6).
//
// Generated once by walking the WASM binary format by hand (LEB128
// section/function-body lengths, the (16xf32,i32)->() host_output
// type, and the table's IEEE-754 bit patterns) and is not regenerated
// at build time; see DESIGN.md for how it was derived.
var fixtureSineOscWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x00, 0x1c, 0x16, 0x63, 0x75, 0x62, 0x65, 0x64,
	0x61, 0x77, 0x3a, 0x70, 0x6c, 0x75, 0x67, 0x69, 0x6e, 0x5f, 0x76, 0x65, 0x72, 0x73, 0x69, 0x6f,
	0x6e, 0x31, 0x2e, 0x30, 0x2e, 0x30, 0x00, 0x2b, 0x11, 0x63, 0x75, 0x62, 0x65, 0x64, 0x61, 0x77,
	0x3a, 0x6e, 0x6f, 0x64, 0x65, 0x5f, 0x6c, 0x69, 0x73, 0x74, 0xa1, 0x6e, 0x73, 0x79, 0x6e, 0x74,
	0x68, 0x3a, 0x73, 0x69, 0x6e, 0x65, 0x5f, 0x6f, 0x73, 0x63, 0x68, 0x73, 0x69, 0x6e, 0x65, 0x5f,
	0x6f, 0x73, 0x63, 0x01, 0x1a, 0x02, 0x60, 0x02, 0x7f, 0x7f, 0x00, 0x60, 0x11, 0x7d, 0x7d, 0x7d,
	0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7d, 0x7f, 0x00, 0x02,
	0x0e, 0x01, 0x03, 0x65, 0x6e, 0x76, 0x06, 0x6f, 0x75, 0x74, 0x70, 0x75, 0x74, 0x00, 0x01, 0x03,
	0x02, 0x01, 0x00, 0x05, 0x03, 0x01, 0x00, 0x01, 0x07, 0x0c, 0x01, 0x08, 0x73, 0x69, 0x6e, 0x65,
	0x5f, 0x6f, 0x73, 0x63, 0x00, 0x01, 0x0a, 0xcc, 0x01, 0x01, 0xc9, 0x01, 0x01, 0x01, 0x7f, 0x20,
	0x01, 0x28, 0x02, 0x00, 0x21, 0x02, 0x20, 0x02, 0x41, 0x00, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02,
	0x00, 0x20, 0x02, 0x41, 0x01, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x02,
	0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x03, 0x6a, 0x41, 0x02, 0x74, 0x2a,
	0x02, 0x00, 0x20, 0x02, 0x41, 0x04, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41,
	0x05, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x06, 0x6a, 0x41, 0x02, 0x74,
	0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x07, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02,
	0x41, 0x08, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x09, 0x6a, 0x41, 0x02,
	0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x0a, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20,
	0x02, 0x41, 0x0b, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x0c, 0x6a, 0x41,
	0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x0d, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00,
	0x20, 0x02, 0x41, 0x0e, 0x6a, 0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x20, 0x02, 0x41, 0x0f, 0x6a,
	0x41, 0x02, 0x74, 0x2a, 0x02, 0x00, 0x41, 0x00, 0x10, 0x00, 0x20, 0x01, 0x20, 0x02, 0x41, 0x10,
	0x6a, 0x36, 0x02, 0x00, 0x0b, 0x0b, 0x87, 0x08, 0x01, 0x00, 0x41, 0x00, 0x0b, 0x80, 0x08, 0x00,
	0x00, 0x00, 0x00, 0x41, 0x3f, 0x0c, 0x3d, 0x34, 0x2a, 0x8c, 0x3d, 0xb3, 0x0a, 0xd2, 0x3d, 0x11,
	0xd6, 0x0b, 0x3e, 0xce, 0x7c, 0x2e, 0x3e, 0x29, 0xef, 0x50, 0x3e, 0xc9, 0x22, 0x73, 0x3e, 0xb6,
	0x86, 0x8a, 0x3e, 0x71, 0x52, 0x9b, 0x3e, 0x8a, 0xef, 0xab, 0x3e, 0x05, 0x59, 0xbc, 0x3e, 0xf5,
	0x89, 0xcc, 0x3e, 0x7c, 0x7d, 0xdc, 0x3e, 0xd2, 0x2e, 0xec, 0x3e, 0x40, 0x99, 0xfb, 0x3e, 0x12,
	0x5c, 0x05, 0x3f, 0x7b, 0xc3, 0x0c, 0x3f, 0xa2, 0x00, 0x14, 0x3f, 0x5a, 0x11, 0x1b, 0x3f, 0x84,
	0xf3, 0x21, 0x3f, 0x0f, 0xa5, 0x28, 0x3f, 0xf9, 0x23, 0x2f, 0x3f, 0x4e, 0x6e, 0x35, 0x3f, 0x2c,
	0x82, 0x3b, 0x3f, 0xbe, 0x5d, 0x41, 0x3f, 0x43, 0xff, 0x46, 0x3f, 0x0a, 0x65, 0x4c, 0x3f, 0x74,
	0x8d, 0x51, 0x3f, 0xf5, 0x76, 0x56, 0x3f, 0x13, 0x20, 0x5b, 0x3f, 0x68, 0x87, 0x5f, 0x3f, 0xa2,
	0xab, 0x63, 0x3f, 0x82, 0x8b, 0x67, 0x3f, 0xde, 0x25, 0x6b, 0x3f, 0xa2, 0x79, 0x6e, 0x3f, 0xce,
	0x85, 0x71, 0x3f, 0x78, 0x49, 0x74, 0x3f, 0xcb, 0xc3, 0x76, 0x3f, 0x08, 0xf4, 0x78, 0x3f, 0x88,
	0xd9, 0x7a, 0x3f, 0xb9, 0x73, 0x7c, 0x3f, 0x20, 0xc2, 0x7d, 0x3f, 0x57, 0xc4, 0x7e, 0x3f, 0x13,
	0x7a, 0x7f, 0x3f, 0x1c, 0xe3, 0x7f, 0x3f, 0x52, 0xff, 0x7f, 0x3f, 0xae, 0xce, 0x7f, 0x3f, 0x3d,
	0x51, 0x7f, 0x3f, 0x26, 0x87, 0x7e, 0x3f, 0xa5, 0x70, 0x7d, 0x3f, 0x0e, 0x0e, 0x7c, 0x3f, 0xcb,
	0x5f, 0x7a, 0x3f, 0x5d, 0x66, 0x78, 0x3f, 0x5c, 0x22, 0x76, 0x3f, 0x77, 0x94, 0x73, 0x3f, 0x71,
	0xbd, 0x70, 0x3f, 0x25, 0x9e, 0x6d, 0x3f, 0x82, 0x37, 0x6a, 0x3f, 0x8f, 0x8a, 0x66, 0x3f, 0x66,
	0x98, 0x62, 0x3f, 0x35, 0x62, 0x5e, 0x3f, 0x41, 0xe9, 0x59, 0x3f, 0xe1, 0x2e, 0x55, 0x3f, 0x81,
	0x34, 0x50, 0x3f, 0x9f, 0xfb, 0x4a, 0x3f, 0xcd, 0x85, 0x45, 0x3f, 0xae, 0xd4, 0x3f, 0x3f, 0xf8,
	0xe9, 0x39, 0x3f, 0x72, 0xc7, 0x33, 0x3f, 0xf2, 0x6e, 0x2d, 0x3f, 0x61, 0xe2, 0x26, 0x3f, 0xb6,
	0x23, 0x20, 0x3f, 0xf8, 0x34, 0x19, 0x3f, 0x3b, 0x18, 0x12, 0x3f, 0xa1, 0xcf, 0x0a, 0x3f, 0x5b,
	0x5d, 0x03, 0x3f, 0x4a, 0x87, 0xf7, 0x3e, 0x8e, 0x09, 0xe8, 0x3e, 0x29, 0x46, 0xd8, 0x3e, 0xd6,
	0x41, 0xc8, 0x3e, 0x64, 0x01, 0xb8, 0x3e, 0xb4, 0x89, 0xa7, 0x3e, 0xb8, 0xdf, 0x96, 0x3e, 0x71,
	0x08, 0x86, 0x3e, 0xd8, 0x11, 0x6a, 0x3e, 0x89, 0xcc, 0x47, 0x3e, 0x3f, 0x4b, 0x25, 0x3e, 0x54,
	0x98, 0x02, 0x3e, 0x6a, 0x7c, 0xbf, 0x3d, 0x5d, 0x1d, 0x73, 0x3d, 0xd3, 0xf1, 0xcd, 0x3c, 0xd0,
	0x29, 0x15, 0xbc, 0x9f, 0x82, 0x31, 0xbd, 0xc0, 0xc2, 0x9e, 0xbd, 0x87, 0x94, 0xe4, 0xbd, 0xd7,
	0x10, 0x15, 0xbe, 0xaa, 0xaa, 0x37, 0xbe, 0x59, 0x0d, 0x5a, 0xbe, 0x92, 0x2e, 0x7c, 0xbe, 0x0b,
	0x02, 0x8f, 0xbe, 0xdd, 0xc1, 0x9f, 0xbe, 0xba, 0x51, 0xb0, 0xbe, 0xa7, 0xac, 0xc0, 0xbe, 0xbc,
	0xcd, 0xd0, 0xbe, 0x21, 0xb0, 0xe0, 0xbe, 0x12, 0x4f, 0xf0, 0xbe, 0xde, 0xa5, 0xff, 0xbe, 0xf5,
	0x57, 0x07, 0xbf, 0x59, 0xb4, 0x0e, 0xbf, 0xe6, 0xe5, 0x15, 0xbf, 0x72, 0xea, 0x1c, 0xbf, 0xe2,
	0xbf, 0x23, 0xbf, 0x29, 0x64, 0x2a, 0xbf, 0x48, 0xd5, 0x30, 0xbf, 0x51, 0x11, 0x37, 0xbf, 0x64,
	0x16, 0x3d, 0xbf, 0xb3, 0xe2, 0x42, 0xbf, 0x80, 0x74, 0x48, 0xbf, 0x1e, 0xca, 0x4d, 0xbf, 0xf5,
	0xe1, 0x52, 0xbf, 0x7c, 0xba, 0x57, 0xbf, 0x3f, 0x52, 0x5c, 0xbf, 0xdd, 0xa7, 0x60, 0xbf, 0x0a,
	0xba, 0x64, 0xbf, 0x8b, 0x87, 0x68, 0xbf, 0x3d, 0x0f, 0x6c, 0xbf, 0x11, 0x50, 0x6f, 0xbf, 0x0c,
	0x49, 0x72, 0xbf, 0x4a, 0xf9, 0x74, 0xbf, 0xfd, 0x5f, 0x77, 0xbf, 0x6b, 0x7c, 0x79, 0xbf, 0xf3,
	0x4d, 0x7b, 0xbf, 0x09, 0xd4, 0x7c, 0xbf, 0x38, 0x0e, 0x7e, 0xbf, 0x21, 0xfc, 0x7e, 0xbf, 0x7d,
	0x9d, 0x7f, 0xbf, 0x1c, 0xf2, 0x7f, 0xbf, 0xe4, 0xf9, 0x7f, 0xbf, 0xd2, 0xb4, 0x7f, 0xbf, 0xfc,
	0x22, 0x7f, 0xbf, 0x8e, 0x44, 0x7e, 0xbf, 0xca, 0x19, 0x7d, 0xbf, 0x09, 0xa3, 0x7b, 0xbf, 0xbd,
	0xe0, 0x79, 0xbf, 0x6c, 0xd3, 0x77, 0xbf, 0xb5, 0x7b, 0x75, 0xbf, 0x4a, 0xda, 0x72, 0xbf, 0xf8,
	0xef, 0x6f, 0xbf, 0x9c, 0xbd, 0x6c, 0xbf, 0x2e, 0x44, 0x69, 0xbf, 0xb8, 0x84, 0x65, 0xbf, 0x5a,
	0x80, 0x61, 0xbf, 0x4a, 0x38, 0x5d, 0xbf, 0xcf, 0xad, 0x58, 0xbf, 0x47, 0xe2, 0x53, 0xbf, 0x23,
	0xd7, 0x4e, 0xbf, 0xe6, 0x8d, 0x49, 0xbf, 0x27, 0x08, 0x44, 0xbf, 0x8d, 0x47, 0x3e, 0xbf, 0xd3,
	0x4d, 0x38, 0xbf, 0xc5, 0x1c, 0x32, 0xbf, 0x3d, 0xb6, 0x2b, 0xbf, 0x29, 0x1c, 0x25, 0xbf, 0x83,
	0x50, 0x1e, 0xbf, 0x56, 0x55, 0x17, 0xbf, 0xb9, 0x2c, 0x10, 0xbf, 0xd5, 0xd8, 0x08, 0xbf, 0xda,
	0x5b, 0x01, 0xbf, 0x14, 0x70, 0xf3, 0xbe, 0x5f, 0xdf, 0xe3, 0xbe, 0x3f, 0x0a, 0xd4, 0xbe, 0x78,
	0xf5, 0xc3, 0xbe, 0xdc, 0xa5, 0xb3, 0xbe, 0x51, 0x20, 0xa3, 0xbe, 0xcc, 0x69, 0x92, 0xbe, 0x54,
	0x87, 0x81, 0xbe, 0xef, 0xfb, 0x60, 0xbe, 0xac, 0xa5, 0x3e, 0xbe, 0x2d, 0x16, 0x1c, 0xbe, 0xa3,
	0xaf, 0xf2, 0xbd, 0x11, 0xea, 0xac, 0xbd, 0x29, 0xe1, 0x4d, 0xbd, 0xc4, 0x60, 0x83, 0xbc, 0x3b,
	0x28, 0x95, 0x3c, 0x39, 0xc2, 0x56, 0x3d, 0xee, 0x57, 0xb1, 0x3d, 0x81, 0x19, 0xf7, 0x3d, 0x73,
	0x48, 0x1e, 0x3e, 0xa0, 0xd4, 0x40, 0x3e, 0xe9, 0x26, 0x63, 0x3e, 0x80, 0x9a, 0x82, 0x3e, 0x56,
	0x7a, 0x93, 0x3e, 0xe6, 0x2d, 0xa4, 0x3e, 0x2b, 0xb0, 0xb4, 0x3e, 0x32, 0xfc, 0xc4, 0x3e, 0x15,
	0x0d, 0xd5, 0x3e, 0x02, 0xde, 0xe4, 0x3e, 0x3a, 0x6a, 0xf4, 0x3e, 0x88, 0xd6, 0x01, 0x3f, 0xf9,
	0x50, 0x09, 0x3f, 0x30, 0xa2, 0x10, 0x3f, 0xfb, 0xc7, 0x17, 0x3f, 0x35, 0xc0, 0x1e, 0x3f, 0xc6,
	0x88, 0x25, 0x3f, 0xa5, 0x1f, 0x2c, 0x3f, 0xd7, 0x82, 0x32, 0x3f, 0x72, 0xb0, 0x38, 0x3f, 0x9a,
	0xa6, 0x3e, 0x3f, 0x86, 0x63, 0x44, 0x3f, 0x7c, 0xe5, 0x49, 0x3f, 0xd5, 0x2a, 0x4f, 0x3f, 0xfc,
	0x31, 0x54, 0x3f, 0x6f, 0xf9, 0x58, 0x3f, 0xbe, 0x7f, 0x5d, 0x3f, 0x8e, 0xc3, 0x61, 0x3f, 0x97,
	0xc3, 0x65, 0x3f, 0xa5, 0x7e, 0x69, 0x3f, 0x99, 0xf3, 0x6c, 0x3f, 0x6b, 0x21, 0x70, 0x3f, 0x25,
	0x07, 0x73, 0x3f, 0xea, 0xa3, 0x75, 0x3f, 0xef, 0xf6, 0x77, 0x3f, 0x83, 0xff, 0x79, 0x3f, 0x09,
	0xbd, 0x7b, 0x3f, 0xfc, 0x2e, 0x7d, 0x3f, 0xec, 0x54, 0x7e, 0x3f, 0x81, 0x2e, 0x7f, 0x3f, 0x7b,
	0xbb, 0x7f, 0x3f, 0xad, 0xfb, 0x7f, 0x3f, 0x06, 0xef, 0x7f, 0x3f, 0x8a, 0x95, 0x7f, 0x3f, 0x52,
	0xef, 0x7e, 0x3f, 0x91, 0xfc, 0x7d, 0x3f, 0x8f, 0xbd, 0x7c, 0x3f, 0xae, 0x32, 0x7b, 0x3f, 0x62,
	0x5c, 0x79, 0x3f, 0x39, 0x3b, 0x77, 0x3f, 0xd8, 0xcf, 0x74, 0x3f, 0xf7, 0x1a, 0x72, 0x3f, 0x67,
	0x1d, 0x6f, 0x3f, 0x0e, 0xd8, 0x6b, 0x3f, 0xe7, 0x4b, 0x68, 0x3f, 0x02, 0x7a, 0x64, 0x3f, 0x86,
	0x63, 0x60, 0x3f, 0xad, 0x09, 0x5c, 0x3f, 0xc4, 0x6d, 0x57, 0x3f, 0x2e, 0x91, 0x52, 0x3f, 0x61,
	0x75, 0x4d, 0x3f, 0xe6, 0x1b, 0x48, 0x3f, 0x57, 0x86, 0x42, 0x3f, 0x62, 0xb6, 0x3c, 0x3f, 0xc5,
	0xad, 0x36, 0x3f, 0x50, 0x6e, 0x30, 0x3f, 0xe4, 0xf9, 0x29, 0x3f, 0x70, 0x52, 0x23, 0x3f,
}

// FixtureSineOscModule returns a fresh copy of the fixture's raw WASM
// bytes, suitable for plugin.Prepare.
func FixtureSineOscModule() []byte {
	out := make([]byte, len(fixtureSineOscWasm))
	copy(out, fixtureSineOscWasm)
	return out
}
