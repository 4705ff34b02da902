package riftplot

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window runner.
type HeadlessConfig struct {
	// Hz is the tick rate; 0 means 60.
	Hz int
	// Ticks stops the run after this many ticks; 0 runs until ctx is done
	// or an attached script finishes.
	Ticks uint64
	// StopWhenScriptDone ends the run once the attached ScriptRunner is
	// done.
	StopWhenScriptDone bool
}

// RunHeadless drives s without opening a window: every tick processes
// events, steps the script and the debouncer, then runs a frame with no
// render target. It returns ctx.Err() when cancelled, the first script
// error, or nil when the tick limit or script end is reached.
func RunHeadless(ctx context.Context, s *Sandbox, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := s.Update(); err != nil {
				return err
			}
			// Frame errors are recorded by the scheduler and do not end the run.
			_ = s.Tick(nil)
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
			if cfg.StopWhenScriptDone && s.script != nil && s.script.Done() {
				return nil
			}
		}
	}
}
