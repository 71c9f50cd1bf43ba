package binary

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// StripFunc removes debug symbols from the executable at path in place.
type StripFunc func(ctx context.Context, path string) error

// SystemStrip runs the platform's strip command.
func SystemStrip(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, "strip", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("run strip: %w: %s", err, msg)
		}
		return fmt.Errorf("run strip: %w", err)
	}
	return nil
}
