package plugin

import "fmt"

// HostFunction names the four fixed imports a plugin may use, per §4.F
// and §6. Each v128 in the spec's signatures is represented here as 4
// packed float32 lanes (16 lanes total for BlockSize=16 samples)
// rather than a raw SIMD v128 register: wazero's Go host-function
// builder has first-class float32 parameter/result support but no
// ergonomic way to pass opaque v128 values to/from a Go function, and
// lane-splitting preserves the exact bit content while staying
// trivially host-implementable. See DESIGN.md.
type HostFunction string

const (
	HostSampleRate HostFunction = "sample_rate"
	HostInput      HostFunction = "input"
	HostOutput     HostFunction = "output"
	HostAttribute  HostFunction = "attribute"
)

const lanesPerBlock = 16 // 4 x v128 of 4 f32 lanes each == BlockSize

func blockSignature() funcType {
	f32s := make([]valueType, lanesPerBlock)
	for i := range f32s {
		f32s[i] = valTypeF32
	}
	return funcType{params: nil, results: f32s}
}

func expectedHostSignatures() map[HostFunction]funcType {
	f32s := make([]valueType, lanesPerBlock)
	for i := range f32s {
		f32s[i] = valTypeF32
	}
	return map[HostFunction]funcType{
		HostSampleRate: {params: nil, results: []valueType{valTypeI32}},
		HostInput:      {params: []valueType{valTypeI32}, results: f32s},
		HostOutput:     {params: append(append([]valueType{}, f32s...), valTypeI32), results: nil},
		HostAttribute:  {params: []valueType{valTypeI32}, results: f32s},
	}
}

func sameSignature(a, b funcType) bool {
	if len(a.params) != len(b.params) || len(a.results) != len(b.results) {
		return false
	}
	for i := range a.params {
		if a.params[i] != b.params[i] {
			return false
		}
	}
	for i := range a.results {
		if a.results[i] != b.results[i] {
			return false
		}
	}
	return true
}

// ImportBinding names one function a plugin imports: the (module,
// name) pair the module's import section declared, and which fixed
// HostFunction it resolves to.
type ImportBinding struct {
	Module   string
	Name     string
	Function HostFunction
}

// resolveImports validates that every function import names one of
// the four recognised host functions (under any module namespace, per
// §6) with the correct signature, and that no other import kind
// (table/memory/global) or unrecognised function name appears.
func resolveImports(info *moduleInfo) ([]ImportBinding, error) {
	expected := expectedHostSignatures()
	var out []ImportBinding
	for _, imp := range info.imports {
		if imp.kind != importKindFunc {
			return nil, fmt.Errorf("%w: unrecognised non-function import %q", ErrInvalidPlugin, imp.name)
		}
		hf := HostFunction(imp.name)
		sig, ok := expected[hf]
		if !ok {
			return nil, fmt.Errorf("%w: unrecognised import %q", ErrInvalidPlugin, imp.name)
		}
		if int(imp.typeIdx) >= len(info.types) {
			return nil, fmt.Errorf("%w: import %q has out-of-range type index", ErrInvalidPlugin, imp.name)
		}
		if !sameSignature(info.types[imp.typeIdx], sig) {
			return nil, fmt.Errorf("%w: import %q has the wrong signature", ErrInvalidPlugin, imp.name)
		}
		out = append(out, ImportBinding{Module: imp.module, Name: imp.name, Function: hf})
	}
	return out, nil
}

// validateNodeExports checks that every export named by the node_list
// section exists, is a function, and is defined by the module rather
// than imported. It does not check the function's signature.
func validateNodeExports(info *moduleInfo, nodeList map[string]string) error {
	exportsByName := make(map[string]exportEntry, len(info.exports))
	for _, e := range info.exports {
		exportsByName[e.name] = e
	}
	numFuncImports := uint32(0)
	for _, imp := range info.imports {
		if imp.kind == importKindFunc {
			numFuncImports++
		}
	}
	for key, exportName := range nodeList {
		e, ok := exportsByName[exportName]
		if !ok {
			return fmt.Errorf("%w: node_list entry %q names a nonexistent export %q", ErrInvalidPlugin, key, exportName)
		}
		if e.kind != importKindFunc {
			return fmt.Errorf("%w: node_list entry %q's export %q is not a function", ErrInvalidPlugin, key, exportName)
		}
		// Function indices run [imported funcs][module-defined funcs], so
		// a module-defined function's type must come from the function
		// section, which we don't retain; trust wazero's own validation
		// at compile time for the type-index cross-reference and only
		// check here that this isn't accidentally a re-exported import
		// (those would have the wrong calling convention for a node).
		if e.idx < numFuncImports {
			return fmt.Errorf("%w: node_list entry %q exports an imported function, not a defined one", ErrInvalidPlugin, key)
		}
	}
	return nil
}
