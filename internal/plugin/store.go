package plugin

// Store is the per-instance host-side state backing the four plugin
// imports (§4.F "Per-invocation protocol"): the current input block
// per port, the output accumulation block per port, and the current
// attribute map, all refreshed by the executor before each node call
// and drained afterward.
type Store struct {
	SampleRate int32

	inputs  map[int32][lanesPerBlock]float32
	outputs map[int32][lanesPerBlock]float32
	attrs   map[int32][lanesPerBlock]float32
}

func newStore(sampleRate int) *Store {
	return &Store{
		SampleRate: int32(sampleRate),
		inputs:     make(map[int32][lanesPerBlock]float32),
		outputs:    make(map[int32][lanesPerBlock]float32),
		attrs:      make(map[int32][lanesPerBlock]float32),
	}
}

// SetInput stages a block of samples the plugin will read via its
// input(port) import.
func (s *Store) SetInput(port int32, block [lanesPerBlock]float32) {
	s.inputs[port] = block
}

// TakeOutput returns (and clears) the block the plugin wrote via its
// output(block, port) import, or the zero block if nothing was
// written this invocation.
func (s *Store) TakeOutput(port int32) [lanesPerBlock]float32 {
	b := s.outputs[port]
	delete(s.outputs, port)
	return b
}

// SetAttribute stages a value the plugin can read via attribute(key).
// The worker neither stages nor reads attributes: it judges a note
// finished from silent output (see worker.runNoteProcess).
func (s *Store) SetAttribute(key int32, block [lanesPerBlock]float32) {
	s.attrs[key] = block
}

func (s *Store) reset() {
	clear(s.inputs)
	clear(s.outputs)
	clear(s.attrs)
}
