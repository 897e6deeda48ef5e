package info

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// These are set during build time via -ldflags "-X ...".
var (
	commitSha = ""
	version   = ""
	buildDate = ""
)

type Version struct {
	Commit    string `json:"commit"`
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	BuildDate string `json:"buildDate"`
	Os        string `json:"os"`
	Arch      string `json:"arch"`
}

func GetVersion() Version {
	return Version{
		Commit:    commitSha,
		Version:   version,
		GoVersion: runtime.Version(),
		BuildDate: buildDate,
		Os:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

func GetVersionJSON() (string, error) {
	ver, err := json.MarshalIndent(GetVersion(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not marshal version info: %v", err)
	}
	return string(ver), nil
}
