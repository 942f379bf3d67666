package lifecycle

import "testing"

func TestShuttingDownFlag(t *testing.T) {
	defer SetShuttingDown(false)

	if IsShuttingDown() {
		t.Fatal("IsShuttingDown() = true before flag set")
	}
	SetShuttingDown(true)
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true)")
	}
	SetShuttingDown(false)
	if IsShuttingDown() {
		t.Error("IsShuttingDown() = true after SetShuttingDown(false)")
	}
}
