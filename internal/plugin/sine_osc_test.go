package plugin

import (
	"context"
	"math"
	"testing"
)

// TestFixtureSineOscPreparesAndRuns exercises a real function body, not
// just section/header bytes: Prepare validates FixtureSineOscModule
// the same way it would any third-party plugin, then a real wazero
// instance runs its "sine_osc" export sixteen times (one call per
// 16-lane block, covering one 256-sample buffer) and the samples it
// writes via host_output are checked against the exact tone the
// module's data section was generated from.
func TestFixtureSineOscPreparesAndRuns(t *testing.T) {
	ctx := context.Background()

	p, err := Prepare(FixtureSineOscModule())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if p.NodeList[FixtureSineOscResourceKey] != FixtureSineOscExportName {
		t.Fatalf("node list missing %q -> %q, got %+v", FixtureSineOscResourceKey, FixtureSineOscExportName, p.NodeList)
	}

	factory, err := NewStandaloneFactory(ctx, p, FixtureSineOscSampleRate)
	if err != nil {
		t.Fatalf("NewStandaloneFactory: %v", err)
	}
	defer factory.Close(ctx)

	inst, err := factory.NewInstance(ctx)
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	defer inst.Close(ctx)

	state := make([]byte, 4) // phase counter, starts at 0

	const blocks = fixtureSineOscTableLen / lanesPerBlock
	for blk := 0; blk < blocks; blk++ {
		newState, err := inst.Invoke(ctx, FixtureSineOscResourceKey, nil, state)
		if err != nil {
			t.Fatalf("Invoke block %d: %v", blk, err)
		}
		state = newState

		got := inst.Store().TakeOutput(0)
		for lane := 0; lane < lanesPerBlock; lane++ {
			n := blk*lanesPerBlock + lane
			want := float32(math.Sin(2 * math.Pi * FixtureSineOscFrequency * float64(n) / FixtureSineOscSampleRate))
			if diff := got[lane] - want; diff > 1e-4 || diff < -1e-4 {
				t.Fatalf("sample %d: got %v, want %v", n, got[lane], want)
			}
		}
	}
}
