package contamination

import (
	"image"

	"golang.org/x/image/draw"
)

// WorkingSize is the square resolution every image is normalized to.
const WorkingSize = 224

// gray is an 8-bit single channel raster in row-major order.
type gray struct {
	pix    []uint8
	width  int
	height int
}

func (g gray) at(x, y int) uint8 {
	return g.pix[y*g.width+x]
}

func resize(src image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// channelSamples flattens the colour planes of img, alpha excluded.
func channelSamples(img *image.NRGBA) []float64 {
	b := img.Bounds()
	out := make([]float64, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			out = append(out, float64(c.B), float64(c.G), float64(c.R))
		}
	}
	return out
}

// toLuma converts with fixed-point BT.601 weights, rounding to nearest.
func toLuma(img *image.NRGBA) gray {
	const (
		shift = 14
		rW    = 4899
		gW    = 9617
		bW    = 1868
		half  = 1 << (shift - 1)
	)
	b := img.Bounds()
	g := gray{pix: make([]uint8, b.Dx()*b.Dy()), width: b.Dx(), height: b.Dy()}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			g.pix[i] = uint8((int(c.R)*rW + int(c.G)*gW + int(c.B)*bW + half) >> shift)
			i++
		}
	}
	return g
}

// equalize spreads the luma histogram over the full 0..255 range.
func equalize(src gray) gray {
	var hist [256]int
	for _, v := range src.pix {
		hist[v]++
	}
	total := len(src.pix)
	out := gray{pix: make([]uint8, total), width: src.width, height: src.height}
	if total == 0 {
		return out
	}

	first := 0
	for hist[first] == 0 {
		first++
	}
	if hist[first] == total {
		for i := range out.pix {
			out.pix[i] = uint8(first)
		}
		return out
	}

	var lut [256]uint8
	scale := 255.0 / float64(total-hist[first])
	sum := 0
	for i := first + 1; i < 256; i++ {
		sum += hist[i]
		v := float64(sum)*scale + 0.5
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}
	for i, v := range src.pix {
		out.pix[i] = lut[v]
	}
	return out
}
