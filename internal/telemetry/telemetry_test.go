package telemetry

import "testing"

func TestNewReporterDisabledWithEmptyAddr(t *testing.T) {
	r, err := NewReporter("")
	if err != nil {
		t.Fatalf("NewReporter: %v", err)
	}
	if r != nil {
		t.Fatal("expected a nil Reporter for an empty address")
	}
	// ReportFrame on a nil *Reporter must be a safe no-op.
	r.ReportFrame(1, 100, 0)
}

func TestReportFrameDoesNotPanic(t *testing.T) {
	r, err := NewReporter("127.0.0.1:57130")
	if err != nil {
		t.Fatalf("NewReporter: %v", err)
	}
	// UDP is fire-and-forget; nothing needs to be listening for this
	// to succeed, matching the teacher's own OSC tests.
	r.ReportFrame(42, 250, 3)
}

func TestNewReporterRejectsMalformedAddr(t *testing.T) {
	if _, err := NewReporter("not-a-valid-addr"); err == nil {
		t.Fatal("expected an error for a malformed address")
	}
}
