package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const versionProbeTimeout = 3 * time.Second

// probeVersion invokes the binary with its version arguments and reduces the
// output to a short token. Probe failures leave the version empty without
// flipping the dependency to unavailable.
func probeVersion(ctx context.Context, command string, args []string) string {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, command, args...).Output()
	if err != nil {
		return ""
	}
	return versionToken(string(output))
}

// versionToken extracts a version from the first non-empty banner line.
// Tools format banners differently ("ffmpeg version 6.1.1 Copyright ...",
// "edge-tts 7.0.0"), so the token after "version" is preferred with the
// second field as fallback.
func versionToken(output string) string {
	var line string
	for _, candidate := range strings.Split(output, "\n") {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" {
			line = candidate
			break
		}
	}
	if line == "" {
		return ""
	}
	fields := strings.Fields(line)
	for i, field := range fields {
		if strings.EqualFold(field, "version") && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	if len(fields) >= 2 {
		return fields[1]
	}
	return line
}
