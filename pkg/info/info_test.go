package info

import (
	"encoding/json"
	"runtime"
	"testing"
)

func TestGetVersionJSON(t *testing.T) {
	out, err := GetVersionJSON()
	if err != nil {
		t.Fatalf("GetVersionJSON() failed: %v", err)
	}

	var ver Version
	if err := json.Unmarshal([]byte(out), &ver); err != nil {
		t.Fatalf("GetVersionJSON() returned invalid JSON %q: %v", out, err)
	}
	if ver.GoVersion != runtime.Version() {
		t.Errorf("GoVersion: expected %v, got %v", runtime.Version(), ver.GoVersion)
	}
	if ver.Os != runtime.GOOS || ver.Arch != runtime.GOARCH {
		t.Errorf("platform: expected %s/%s, got %s/%s", runtime.GOOS, runtime.GOARCH, ver.Os, ver.Arch)
	}
}
