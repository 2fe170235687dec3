// Package telemetry implements the one-way OSC frame-diagnostics
// broadcaster of SPEC_FULL §4.H.viii: after every frame the host may
// emit a single "/cubedaw/frame" message carrying the frame number,
// worker idle-latency, and dropped-sample count. Purely an outbound
// feed — it never influences engine state, so enabling it does not
// reintroduce the "network collaboration" non-goal.
//
// Grounded on the teacher's Model.sendOSCInstrumentMessage (OSC client
// construction plus a sequence of msg.Append calls, with Send errors
// logged rather than propagated), repurposed from a synth-trigger
// message to a diagnostics one.
package telemetry

import (
	"log"
	"net"
	"strconv"

	"github.com/hypebeast/go-osc/osc"
)

// Reporter sends one OSC message per frame to a fixed address. The
// zero Reporter is valid and a no-op (NewReporter returns nil from an
// empty address so callers can treat "no reporter" and "disabled
// reporter" identically).
type Reporter struct {
	client *osc.Client
}

// NewReporter dials addr ("host:port"), or returns (nil, nil) if addr
// is empty — per SPEC_FULL §6, absence of telemetry_osc_addr disables
// the feature entirely rather than erroring.
func NewReporter(addr string) (*Reporter, error) {
	if addr == "" {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	return &Reporter{client: osc.NewClient(host, port)}, nil
}

// ReportFrame announces one completed frame. frameNumber is the
// monotonically increasing frame counter, idleLatency is how long the
// host waited on the master read handle, and droppedSamples counts any
// samples the audio sink could not accept in time.
func (r *Reporter) ReportFrame(frameNumber int64, idleLatencyMicros int64, droppedSamples int) {
	if r == nil || r.client == nil {
		return
	}
	msg := osc.NewMessage("/cubedaw/frame")
	msg.Append(frameNumber)
	msg.Append("idleLatencyMicros")
	msg.Append(idleLatencyMicros)
	msg.Append("droppedSamples")
	msg.Append(int32(droppedSamples))
	if err := r.client.Send(msg); err != nil {
		log.Printf("telemetry: error sending frame report: %v", err)
	}
}
