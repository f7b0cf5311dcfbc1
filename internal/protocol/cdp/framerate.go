package cdp

import (
	"fmt"

	"github.com/danmuck/cdpctl/internal/protocol/cea708"
)

// Framerate is one entry of the fixed CDP frame rate table.
type Framerate struct {
	id    uint8
	numer uint32
	denom uint32
}

var framerates = [...]Framerate{
	{id: 0x1, numer: 24000, denom: 1001},
	{id: 0x2, numer: 24, denom: 1},
	{id: 0x3, numer: 25, denom: 1},
	{id: 0x4, numer: 30000, denom: 1001},
	{id: 0x5, numer: 30, denom: 1},
	{id: 0x6, numer: 50, denom: 1},
	{id: 0x7, numer: 60000, denom: 1001},
	{id: 0x8, numer: 60, denom: 1},
}

// FramerateFromID looks up the cdp_frame_rate code id.
func FramerateFromID(id uint8) (Framerate, bool) {
	if id == 0 || int(id) > len(framerates) {
		return Framerate{}, false
	}
	return framerates[id-1], true
}

// Framerates lists the table in id order.
func Framerates() []Framerate {
	out := make([]Framerate, len(framerates))
	copy(out, framerates[:])
	return out
}

func (f Framerate) ID() uint8 {
	return f.id
}

func (f Framerate) Numer() uint32 {
	return f.numer
}

func (f Framerate) Denom() uint32 {
	return f.denom
}

func (f Framerate) String() string {
	return fmt.Sprintf("%d/%d", f.numer, f.denom)
}

func (f Framerate) cea708() cea708.Framerate {
	return cea708.NewFramerate(f.numer, f.denom)
}
