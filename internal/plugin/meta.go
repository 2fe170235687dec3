package plugin

import (
	"fmt"
	"regexp"

	"github.com/fxamacker/cbor/v2"
)

// Meta is the optional cubedaw:plugin_meta section content.
type Meta struct {
	ID          string
	Name        string
	Description string
}

// metaWire is the on-the-wire shape of plugin_meta: a key/value map.
// The original cubedaw format uses postcard; this port uses CBOR
// (github.com/fxamacker/cbor/v2, also reached for by the wider example
// corpus — see teranos-QNTX's go.mod — as an idiomatic Go binary
// codec) since no Go postcard implementation exists in the ecosystem.
type metaWire map[string]string

var recognisedMetaKeys = map[string]bool{"id": true, "name": true, "description": true}

func parseMeta(info *moduleInfo) (*Meta, error) {
	raw, ok := findCustomSection(info, customSectionMeta)
	if !ok {
		return nil, nil
	}
	var wire metaWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed %s: %v", ErrInvalidPlugin, customSectionMeta, err)
	}
	for k := range wire {
		if !recognisedMetaKeys[k] {
			return nil, fmt.Errorf("%w: unrecognised %s key %q", ErrInvalidPlugin, customSectionMeta, k)
		}
	}
	id, ok := wire["id"]
	if !ok {
		return nil, fmt.Errorf("%w: %s missing required key \"id\"", ErrInvalidPlugin, customSectionMeta)
	}
	name, ok := wire["name"]
	if !ok {
		return nil, fmt.Errorf("%w: %s missing required key \"name\"", ErrInvalidPlugin, customSectionMeta)
	}
	if !resourceNamespaceRegexp.MatchString(id) {
		return nil, fmt.Errorf("%w: plugin_meta id %q is not a valid resource-key namespace", ErrInvalidPlugin, id)
	}
	return &Meta{ID: id, Name: name, Description: wire["description"]}, nil
}

// resourceKeyRegexp / resourceNamespaceRegexp implement §6's resource
// key grammar: "namespace:item" where each component is nonempty,
// dot-separated, and each subcomponent matches [a-z0-9_]+.
var (
	resourceSubcomponent   = `[a-z0-9_]+`
	resourceNamespaceRegexp = regexp.MustCompile(`^` + resourceSubcomponent + `(\.` + resourceSubcomponent + `)*$`)
	resourceKeyRegexp       = regexp.MustCompile(`^` + resourceSubcomponent + `(\.` + resourceSubcomponent + `)*:` + resourceSubcomponent + `(\.` + resourceSubcomponent + `)*$`)
)

// ValidResourceKey reports whether key matches the §6 grammar.
func ValidResourceKey(key string) bool {
	return resourceKeyRegexp.MatchString(key)
}

// nodeListWire is the on-the-wire shape of cubedaw:node_list: resource
// key -> exported function name.
type nodeListWire map[string]string

func parseNodeList(info *moduleInfo) (map[string]string, error) {
	raw, ok := findCustomSection(info, customSectionNodeList)
	if !ok {
		return nil, fmt.Errorf("%w: missing required section %q", ErrInvalidPlugin, customSectionNodeList)
	}
	var wire nodeListWire
	if err := cbor.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed %s: %v", ErrInvalidPlugin, customSectionNodeList, err)
	}
	for key := range wire {
		if !ValidResourceKey(key) {
			return nil, fmt.Errorf("%w: node_list resource key %q does not match the namespace:item grammar", ErrInvalidPlugin, key)
		}
	}
	return wire, nil
}
