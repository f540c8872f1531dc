/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package jpeg2000

import (
	"image"
	"image/color"
	"math"
)

// plane holds the reconstructed samples of one component on its own sub-sampled grid.
type plane struct {
	x0, y0 int
	w, h   int
	info   componentInfo
	pix    []int32
}

func (d *decoder) allocatePlanes() {
	s := d.siz
	d.planes = make([]*plane, len(s.comps))
	for c, info := range s.comps {
		p := &plane{
			x0:   ceilDiv(s.x0, info.dx),
			y0:   ceilDiv(s.y0, info.dy),
			info: info,
		}
		p.w = ceilDiv(s.width, info.dx) - p.x0
		p.h = ceilDiv(s.height, info.dy) - p.y0
		p.pix = make([]int32, p.w*p.h)
		if !info.signed {
			mid := int32(1) << uint(info.precision-1)
			for i := range p.pix {
				p.pix[i] = mid
			}
		}
		d.planes[c] = p
	}
}

// finishTile applies the inverse component transform and DC level shift to a decoded
// tile and copies its samples into the component planes.
func (d *decoder) finishTile(t *tile) {
	if t.coding.mct && len(t.comps) >= 3 && sameExtent(t.comps[:3]) {
		c0, c1, c2 := t.comps[0].samples, t.comps[1].samples, t.comps[2].samples
		if t.comps[0].coding.reversible {
			inverseRCT(c0, c1, c2)
		} else {
			inverseICT(c0, c1, c2)
		}
	}

	for c, tc := range t.comps {
		p := d.planes[c]
		info := p.info
		lo, hi := 0.0, float64(int(1)<<uint(info.precision)-1)
		shift := float64(int(1) << uint(info.precision-1))
		if info.signed {
			lo, hi, shift = -shift, shift-1, 0
		}
		w := tc.x1 - tc.x0
		for y := tc.y0; y < tc.y1; y++ {
			py := y - p.y0
			if py < 0 || py >= p.h {
				continue
			}
			for x := tc.x0; x < tc.x1; x++ {
				px := x - p.x0
				if px < 0 || px >= p.w {
					continue
				}
				v := math.Round(tc.samples[(y-tc.y0)*w+x-tc.x0] + shift)
				p.pix[py*p.w+px] = int32(math.Max(lo, math.Min(hi, v)))
			}
		}
	}
}

func sameExtent(comps []*tileComponent) bool {
	for _, c := range comps[1:] {
		if c.x0 != comps[0].x0 || c.x1 != comps[0].x1 || c.y0 != comps[0].y0 || c.y1 != comps[0].y1 {
			return false
		}
	}
	return true
}

// inverseRCT implements the reversible component transform (G.2).
func inverseRCT(y0, y1, y2 []float64) {
	for i := range y0 {
		g := y0[i] - math.Floor((y1[i]+y2[i])/4)
		r := y2[i] + g
		b := y1[i] + g
		y0[i], y1[i], y2[i] = r, g, b
	}
}

// inverseICT implements the irreversible component transform (G.3).
func inverseICT(y0, y1, y2 []float64) {
	for i := range y0 {
		y, cb, cr := y0[i], y1[i], y2[i]
		y0[i] = y + 1.402*cr
		y1[i] = y - 0.34413*cb - 0.71414*cr
		y2[i] = y + 1.772*cb
	}
}

// sample8 returns the component value at image coordinate (x, y) scaled to 8 bits.
func (p *plane) sample8(x, y int, x0, y0 int) uint8 {
	px := ceilDiv(x+x0, p.info.dx) - p.x0
	py := ceilDiv(y+y0, p.info.dy) - p.y0
	px = max(0, min(p.w-1, px))
	py = max(0, min(p.h-1, py))
	v := int(p.pix[py*p.w+px])
	prec := p.info.precision
	if p.info.signed {
		v += 1 << uint(prec-1)
	}
	switch {
	case prec > 8:
		v >>= uint(prec - 8)
	case prec < 8:
		v = v * 255 / (1<<uint(prec) - 1)
	}
	return uint8(max(0, min(255, v)))
}

func (d *decoder) assemble() image.Image {
	s := d.siz
	bounds := image.Rect(0, 0, s.width-s.x0, s.height-s.y0)
	at := func(c, x, y int) uint8 { return d.planes[c].sample8(x, y, s.x0, s.y0) }

	switch len(d.planes) {
	case 1:
		img := image.NewGray(bounds)
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				img.Pix[y*img.Stride+x] = at(0, x, y)
			}
		}
		return img
	case 2:
		return grayAlpha(bounds, at)
	}

	sycc := d.colourSpace == colourSpaceSYCC
	if len(d.planes) == 3 {
		img := image.NewRGBA(bounds)
		for y := 0; y < bounds.Dy(); y++ {
			for x := 0; x < bounds.Dx(); x++ {
				r, g, b := at(0, x, y), at(1, x, y), at(2, x, y)
				if sycc {
					r, g, b = color.YCbCrToRGB(r, g, b)
				}
				i := y*img.Stride + 4*x
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, 0xFF
			}
		}
		return img
	}

	img := image.NewNRGBA(bounds)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b := at(0, x, y), at(1, x, y), at(2, x, y)
			if sycc {
				r, g, b = color.YCbCrToRGB(r, g, b)
			}
			i := y*img.Stride + 4*x
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, at(3, x, y)
		}
	}
	return img
}

func grayAlpha(bounds image.Rectangle, at func(c, x, y int) uint8) image.Image {
	img := image.NewNRGBA(bounds)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			v := at(0, x, y)
			i := y*img.Stride + 4*x
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, at(1, x, y)
		}
	}
	return img
}
