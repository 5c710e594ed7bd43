package compute

import (
	"image"
	"math"
	"math/cmplx"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

// worker holds a parameter snapshot for one render.
type worker struct {
	fractal.Params
}

func (w worker) renderRow(img *image.RGBA, y int) {
	off := img.PixOffset(0, y)
	for x := 0; x < w.Width; x++ {
		n, mu := w.pixel(x, y)
		c := w.color(n, mu)
		img.Pix[off+0] = c.R
		img.Pix[off+1] = c.G
		img.Pix[off+2] = c.B
		img.Pix[off+3] = c.A
		off += 4
	}
}

// pixel returns the escape count and smooth escape value of pixel (x, y),
// averaged over a samples×samples grid when supersampling.
func (w worker) pixel(x, y int) (int, float64) {
	fw, fh := float64(w.Width), float64(w.Height)
	aspect := fh / fw

	if w.Samples <= 1 {
		cx := w.PosX + (float64(x)/fw-0.5)*w.Size
		cy := w.PosY + (float64(y)/fh-0.5)*w.Size*aspect
		return w.point(cx, cy)
	}

	step := 1.0 / (float64(w.Samples) + 1.0)
	total, smooth := 0, 0.0
	for sx := 0; sx < w.Samples; sx++ {
		for sy := 0; sy < w.Samples; sy++ {
			cx := w.PosX + ((float64(x)+step*float64(sx+1))/fw-0.5)*w.Size
			cy := w.PosY + ((float64(y)+step*float64(sy+1))/fh-0.5)*w.Size*aspect
			n, mu := w.point(cx, cy)
			total += n
			smooth += mu
		}
	}
	count := w.Samples * w.Samples
	return total / count, smooth / float64(count)
}

// point iterates z = z² + c until |z| > 2 or the iteration cap.
func (w worker) point(cx, cy float64) (int, float64) {
	c := complex(cx, cy)
	z := complex(0, 0)
	n := 0
	for n < w.Iterations && real(z)*real(z)+imag(z)*imag(z) <= 4 {
		z = z*z + c
		n++
	}
	if n >= w.Iterations {
		return n, float64(n)
	}
	return n, float64(n) + 1 - math.Log2(math.Log(cmplx.Abs(z)))
}
