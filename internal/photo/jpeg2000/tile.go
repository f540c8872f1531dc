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

import "math"

// Subband orientations.
const (
	bandLL = iota
	bandHL
	bandLH
	bandHH
)

type codeBlock struct {
	x0, y0, x1, y1 int

	included      bool
	lblock        int
	zeroBitPlanes int
	passes        int
	data          []byte
}

type precinct struct {
	cbx0, cby0 int
	cbw, cbh   int
	blocks     []*codeBlock
	inclusion  *tagTree
	zeroPlanes *tagTree
}

type subband struct {
	orientation    int
	x0, y0, x1, y1 int
	xcb, ycb       int
	mb             int
	delta          float64
	coeffs         []float64
	precincts      []*precinct
}

func (b *subband) width() int { return b.x1 - b.x0 }

type resolution struct {
	level          int
	x0, y0, x1, y1 int
	ppx, ppy       int
	precinctsWide  int
	precinctsHigh  int
	bands          []*subband
}

func (r *resolution) numPrecincts() int { return r.precinctsWide * r.precinctsHigh }

type tileComponent struct {
	index          int
	x0, y0, x1, y1 int
	coding         codingStyle
	quant          quantization
	resolutions    []*resolution
	samples        []float64
}

type tile struct {
	x0, y0, x1, y1 int
	coding         codingStyle
	comps          []*tileComponent
}

func pow2(n int) int { return 1 << uint(n) }

func ceilDivPow2(a, n int) int { return (a + pow2(n) - 1) >> uint(n) }

// buildTile computes the tile, component, resolution, subband, precinct and code-block
// geometry for a tile.
func (d *decoder) buildTile(ts *tileState) (*tile, error) {
	s := d.siz
	p := ts.index % s.tilesWide()
	q := ts.index / s.tilesWide()
	t := &tile{
		x0: max(s.tileX0+p*s.tileW, s.x0),
		y0: max(s.tileY0+q*s.tileH, s.y0),
		x1: min(s.tileX0+(p+1)*s.tileW, s.width),
		y1: min(s.tileY0+(q+1)*s.tileH, s.height),
	}

	for c, info := range s.comps {
		coding, quant, err := d.componentParams(ts, c)
		if err != nil {
			return nil, err
		}
		if c == 0 {
			t.coding = coding
		}
		tc := &tileComponent{
			index:  c,
			x0:     ceilDiv(t.x0, info.dx),
			y0:     ceilDiv(t.y0, info.dy),
			x1:     ceilDiv(t.x1, info.dx),
			y1:     ceilDiv(t.y1, info.dy),
			coding: coding,
			quant:  quant,
		}
		if err := buildResolutions(tc, info); err != nil {
			return nil, err
		}
		t.comps = append(t.comps, tc)
	}
	return t, nil
}

func buildResolutions(tc *tileComponent, info componentInfo) error {
	levels := tc.coding.levels
	for r := 0; r <= levels; r++ {
		n := levels - r
		pe := tc.coding.precinct(r)
		res := &resolution{
			level: r,
			x0:    ceilDivPow2(tc.x0, n),
			y0:    ceilDivPow2(tc.y0, n),
			x1:    ceilDivPow2(tc.x1, n),
			y1:    ceilDivPow2(tc.y1, n),
			ppx:   pe.ppx,
			ppy:   pe.ppy,
		}
		if res.x1 > res.x0 {
			res.precinctsWide = ceilDivPow2(res.x1, res.ppx) - (res.x0 >> uint(res.ppx))
		}
		if res.y1 > res.y0 {
			res.precinctsHigh = ceilDivPow2(res.y1, res.ppy) - (res.y0 >> uint(res.ppy))
		}

		orientations := []int{bandHL, bandLH, bandHH}
		if r == 0 {
			orientations = []int{bandLL}
		}
		for i, o := range orientations {
			band, err := buildSubband(tc, info, res, o, i)
			if err != nil {
				return err
			}
			res.bands = append(res.bands, band)
		}
		tc.resolutions = append(tc.resolutions, res)
	}
	return nil
}

func buildSubband(tc *tileComponent, info componentInfo, res *resolution, orientation, i int) (*subband, error) {
	levels := tc.coding.levels
	band := &subband{orientation: orientation}
	nb := levels - res.level + 1
	if res.level == 0 {
		nb = levels
	}
	xo, yo := 0, 0
	if orientation == bandHL || orientation == bandHH {
		xo = 1
	}
	if orientation == bandLH || orientation == bandHH {
		yo = 1
	}
	if nb == 0 {
		band.x0, band.y0, band.x1, band.y1 = tc.x0, tc.y0, tc.x1, tc.y1
	} else {
		off := pow2(nb - 1)
		band.x0 = ceilDivPow2(tc.x0-off*xo, nb)
		band.y0 = ceilDivPow2(tc.y0-off*yo, nb)
		band.x1 = ceilDivPow2(tc.x1-off*xo, nb)
		band.y1 = ceilDivPow2(tc.y1-off*yo, nb)
	}

	bandIndex := 0
	gain := 0
	if res.level > 0 {
		bandIndex = 3*(res.level-1) + 1 + i
		gain = 1
		if orientation == bandHH {
			gain = 2
		}
	}
	step, err := tc.quant.step(bandIndex, levels)
	if err != nil {
		return nil, err
	}
	band.mb = tc.quant.guardBits + step.exponent - 1
	band.delta = 1
	if !tc.coding.reversible {
		band.delta = math.Ldexp(1+float64(step.mantissa)/2048, info.precision+gain-step.exponent)
	}

	// Precinct dimensions in subband coordinates.
	pbx, pby := res.ppx, res.ppy
	if res.level > 0 {
		pbx--
		pby--
	}
	band.xcb = min(tc.coding.xcb, pbx)
	band.ycb = min(tc.coding.ycb, pby)
	w, h := band.x1-band.x0, band.y1-band.y0
	if w > 0 && h > 0 {
		band.coeffs = make([]float64, w*h)
	}

	px0 := res.x0 >> uint(res.ppx)
	py0 := res.y0 >> uint(res.ppy)
	for j := 0; j < res.precinctsHigh; j++ {
		for i := 0; i < res.precinctsWide; i++ {
			band.precincts = append(band.precincts, buildPrecinct(band, (px0+i)<<uint(pbx), (py0+j)<<uint(pby), pbx, pby))
		}
	}
	return band, nil
}

func buildPrecinct(band *subband, x, y, pbx, pby int) *precinct {
	p := &precinct{}
	x0 := max(x, band.x0)
	y0 := max(y, band.y0)
	x1 := min(x+pow2(pbx), band.x1)
	y1 := min(y+pow2(pby), band.y1)
	if x1 <= x0 || y1 <= y0 {
		return p
	}
	p.cbx0 = x0 >> uint(band.xcb)
	p.cby0 = y0 >> uint(band.ycb)
	p.cbw = ceilDivPow2(x1, band.xcb) - p.cbx0
	p.cbh = ceilDivPow2(y1, band.ycb) - p.cby0
	for j := 0; j < p.cbh; j++ {
		for i := 0; i < p.cbw; i++ {
			cx := (p.cbx0 + i) << uint(band.xcb)
			cy := (p.cby0 + j) << uint(band.ycb)
			p.blocks = append(p.blocks, &codeBlock{
				x0:     max(cx, x0),
				y0:     max(cy, y0),
				x1:     min(cx+pow2(band.xcb), x1),
				y1:     min(cy+pow2(band.ycb), y1),
				lblock: 3,
			})
		}
	}
	p.inclusion = newTagTree(p.cbw, p.cbh)
	p.zeroPlanes = newTagTree(p.cbw, p.cbh)
	return p
}

func (d *decoder) decodeTile(ts *tileState) error {
	t, err := d.buildTile(ts)
	if err != nil {
		return err
	}
	if err := parsePackets(t, ts.data); err != nil {
		return err
	}
	for _, tc := range t.comps {
		if err := d.cancelled(); err != nil {
			return err
		}
		if err := decodeCodeBlocks(tc); err != nil {
			return err
		}
		tc.samples = inverseDWT(tc)
	}
	d.finishTile(t)
	return nil
}

func decodeCodeBlocks(tc *tileComponent) error {
	var dec t1Decoder
	style := tc.coding.cbStyle
	for _, res := range tc.resolutions {
		for _, band := range res.bands {
			for _, p := range band.precincts {
				for _, cb := range p.blocks {
					if cb.passes == 0 {
						continue
					}
					numbps := band.mb - cb.zeroBitPlanes
					if numbps <= 0 {
						continue
					}
					if numbps > 30 {
						return UnsupportedError("more than 30 magnitude bit-planes")
					}
					w, h := cb.x1-cb.x0, cb.y1-cb.y0
					dec.reset(w, h, band.orientation, style, cb.data)
					lastPlane := dec.decode(cb.passes, numbps)
					dec.store(band, cb, lastPlane, tc.coding.reversible)
				}
			}
		}
	}
	return nil
}
