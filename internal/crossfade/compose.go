package crossfade

import (
	"image"
	"time"

	"github.com/disintegration/imaging"
)

// scaled keeps the last resize of each layer so steady frames do not
// resample every draw.
type scaled struct {
	w, h int
	uris [2]string
	imgs [2]*image.NRGBA
}

func (s *scaled) get(slot int, l layer, w, h int) *image.NRGBA {
	if s.w != w || s.h != h {
		*s = scaled{w: w, h: h}
	}
	if s.uris[slot] == l.uri && s.imgs[slot] != nil {
		return s.imgs[slot]
	}
	img := imaging.Fill(l.img, w, h, imaging.Center, imaging.Linear)
	s.uris[slot], s.imgs[slot] = l.uri, img
	return img
}

// Compose blends both layers, each scaled to cover w x h, over black.
// It returns nil when nothing has loaded yet.
func (r *Renderer) Compose(now time.Time, w, h int) *image.RGBA {
	if w <= 0 || h <= 0 {
		return nil
	}
	oldA, nextA := r.Opacities(now)

	var oldImg, nextImg *image.NRGBA
	if o, ok := r.old.Get(); ok && o.img != nil && oldA > 0 {
		oldImg = r.cache.get(0, o, w, h)
	}
	if n, ok := r.next.Get(); ok && n.img != nil && nextA > 0 {
		nextImg = r.cache.get(1, n, w, h)
	}
	if oldImg == nil && nextImg == nil {
		return nil
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(out.Pix); i += 4 {
		var c [3]float64
		if oldImg != nil {
			for k := 0; k < 3; k++ {
				c[k] = float64(oldImg.Pix[i+k]) * oldA
			}
		}
		if nextImg != nil {
			for k := 0; k < 3; k++ {
				c[k] = c[k]*(1-nextA) + float64(nextImg.Pix[i+k])*nextA
			}
		}
		out.Pix[i] = clampByte(c[0])
		out.Pix[i+1] = clampByte(c[1])
		out.Pix[i+2] = clampByte(c[2])
		out.Pix[i+3] = 0xff
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
