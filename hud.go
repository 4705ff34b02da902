package riftplot

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// hudRefresh is how often, in seconds, the HUD text is rebuilt.
const hudRefresh = 0.5

// hudInfo is the state shown by the HUD.
type hudInfo struct {
	mode       PresentationMode
	fps, tps   float64
	nodes      int
	generation uint64
	pending    bool
	lastErr    error
}

// hud is a text overlay in the top-left corner: mode, FPS/TPS, scene size
// and the last evaluation error.
type hud struct {
	enabled bool
	text    string
	since   float64
	img     *ebiten.Image
	dirty   bool
}

func newHUD(enabled bool) *hud {
	return &hud{enabled: enabled, since: hudRefresh}
}

// update rebuilds the text at most every hudRefresh seconds.
func (h *hud) update(dt float64, info hudInfo) {
	if !h.enabled {
		return
	}
	h.since += dt
	if h.since < hudRefresh {
		return
	}
	h.since = 0
	if t := hudText(info); t != h.text {
		h.text = t
		h.dirty = true
	}
}

func hudText(info hudInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s\n", info.mode)
	fmt.Fprintf(&b, "FPS: %.1f  TPS: %.1f\n", info.fps, info.tps)
	fmt.Fprintf(&b, "nodes: %d  gen: %d", info.nodes, info.generation)
	if info.pending {
		b.WriteString("  (pending)")
	}
	if info.lastErr != nil {
		msg := info.lastErr.Error()
		if len(msg) > 120 {
			msg = msg[:117] + "..."
		}
		fmt.Fprintf(&b, "\nerror: %s", msg)
	}
	return b.String()
}

// draw paints the overlay onto target.
func (h *hud) draw(target *ebiten.Image) {
	if !h.enabled || target == nil || h.text == "" {
		return
	}
	lines := strings.Count(h.text, "\n") + 1
	longest := 0
	for _, l := range strings.Split(h.text, "\n") {
		longest = max(longest, len(l))
	}
	w, ht := longest*6+8, lines*16+4
	if h.img == nil || h.img.Bounds().Dx() != w || h.img.Bounds().Dy() != ht {
		if h.img != nil {
			h.img.Deallocate()
		}
		h.img = ebiten.NewImage(w, ht)
		h.dirty = true
	}
	if h.dirty {
		// Semi-transparent background for readability
		h.img.Fill(color.RGBA{0, 0, 0, 160})
		ebitenutil.DebugPrintAt(h.img, h.text, 4, 2)
		h.dirty = false
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(4, 4)
	target.DrawImage(h.img, op)
}
