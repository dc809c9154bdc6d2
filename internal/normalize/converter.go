package normalize

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// converterTimeout bounds one external conversion so a hung tool cannot
// stall the batch.
const converterTimeout = 30 * time.Second

type converter struct {
	name string
	args func(src, dst string) []string
}

// The converter cascade, tried in order. sips ships with macOS;
// heif-convert comes with libheif on Linux.
var converters = []converter{
	{
		name: "sips",
		args: func(src, dst string) []string {
			return []string{"-s", "format", "jpeg", src, "--out", dst}
		},
	},
	{
		name: "heif-convert",
		args: func(src, dst string) []string {
			return []string{src, dst}
		},
	},
}

var (
	converterOnce sync.Once
	converterIdx  = -1
	converterPath string
)

// findConverter probes the cascade once per process.
func findConverter() (converter, string, bool) {
	converterOnce.Do(func() {
		for i, c := range converters {
			if path, err := exec.LookPath(c.name); err == nil {
				converterIdx = i
				converterPath = path
				return
			}
		}
	})
	if converterIdx < 0 {
		return converter{}, "", false
	}
	return converters[converterIdx], converterPath, true
}

// runConverter converts src into a JPEG at dst using the first available
// external tool.
func runConverter(ctx context.Context, src, dst string) error {
	conv, toolPath, ok := findConverter()
	if !ok {
		return fmt.Errorf("no HEIC converter available (tried sips, heif-convert)")
	}

	ctx, cancel := context.WithTimeout(ctx, converterTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, toolPath, conv.args(src, dst)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %v: %s", conv.name, err, firstLine(out))
	}
	return nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}
	return string(out)
}
