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
	"context"
	"fmt"
	"image"
)

// Codestream markers.
const (
	markerSOC = 0xFF4F
	markerSIZ = 0xFF51
	markerCOD = 0xFF52
	markerCOC = 0xFF53
	markerTLM = 0xFF55
	markerPLM = 0xFF57
	markerPLT = 0xFF58
	markerQCD = 0xFF5C
	markerQCC = 0xFF5D
	markerRGN = 0xFF5E
	markerPOC = 0xFF5F
	markerPPM = 0xFF60
	markerPPT = 0xFF61
	markerCRG = 0xFF63
	markerCOM = 0xFF64
	markerSOT = 0xFF90
	markerSOP = 0xFF91
	markerEPH = 0xFF92
	markerSOD = 0xFF93
	markerEOC = 0xFFD9
)

// Progression orders.
const (
	progressionLRCP = iota
	progressionRLCP
	progressionRPCL
	progressionPCRL
	progressionCPRL
)

// Code-block style flags.
const (
	cbStyleBypass       = 0x01
	cbStyleReset        = 0x02
	cbStyleTermAll      = 0x04
	cbStyleVertCausal   = 0x08
	cbStylePredictable  = 0x10
	cbStyleSegmentation = 0x20
)

// Quantization styles.
const (
	quantNone     = 0
	quantDerived  = 1
	quantExpanded = 2
)

const defaultPrecinctExp = 15

type componentInfo struct {
	precision int
	signed    bool
	dx, dy    int
}

type imageSize struct {
	width, height  int
	x0, y0         int
	tileW, tileH   int
	tileX0, tileY0 int
	comps          []componentInfo
}

func (s imageSize) tilesWide() int { return ceilDiv(s.width-s.tileX0, s.tileW) }
func (s imageSize) tilesHigh() int { return ceilDiv(s.height-s.tileY0, s.tileH) }

type precinctExp struct{ ppx, ppy int }

// componentCoding holds the fields a COC segment may override.
type componentCoding struct {
	levels     int
	xcb, ycb   int
	cbStyle    byte
	reversible bool
	precincts  []precinctExp
}

func (c componentCoding) precinct(r int) precinctExp {
	if r < len(c.precincts) {
		return c.precincts[r]
	}
	return precinctExp{defaultPrecinctExp, defaultPrecinctExp}
}

type codingStyle struct {
	progression int
	layers      int
	mct         bool
	sop, eph    bool
	componentCoding
}

type stepSize struct{ exponent, mantissa int }

type quantization struct {
	style     int
	guardBits int
	steps     []stepSize
}

// step returns the exponent and mantissa for the band at the given index in
// LL, (HL, LH, HH)* order, deriving it when only the LL step is signalled.
func (q quantization) step(bandIndex, levels int) (stepSize, error) {
	if q.style == quantDerived {
		if len(q.steps) == 0 {
			return stepSize{}, FormatError("empty derived quantization")
		}
		base := q.steps[0]
		nb := levels
		if bandIndex > 0 {
			nb = levels - (bandIndex-1)/3
		}
		return stepSize{exponent: base.exponent - levels + nb, mantissa: base.mantissa}, nil
	}
	if bandIndex >= len(q.steps) {
		return stepSize{}, FormatError("missing quantization step for subband")
	}
	return q.steps[bandIndex], nil
}

// codingParams holds marker segments that may appear in the main or a tile-part header.
type codingParams struct {
	cod *codingStyle
	coc map[int]*componentCoding
	qcd *quantization
	qcc map[int]*quantization
}

type tileState struct {
	index  int
	params codingParams
	data   []byte
}

type decoder struct {
	ctx         context.Context
	data        []byte
	colourSpace int
	maxPixels   int

	r      byteReader
	siz    imageSize
	main   codingParams
	tiles  map[int]*tileState
	planes []*plane
}

// componentParams resolves the coding and quantization parameters for component c of a
// tile. Tile COC takes precedence over tile COD, which takes precedence over main COC and
// then main COD. Quantization follows the same order.
func (d *decoder) componentParams(t *tileState, c int) (codingStyle, quantization, error) {
	var cod codingStyle
	switch {
	case t.params.cod != nil:
		cod = *t.params.cod
	case d.main.cod != nil:
		cod = *d.main.cod
		if coc := d.main.coc[c]; coc != nil {
			cod.componentCoding = *coc
		}
	default:
		return codingStyle{}, quantization{}, FormatError("missing COD marker")
	}
	if coc := t.params.coc[c]; coc != nil {
		cod.componentCoding = *coc
	}

	var q *quantization
	switch {
	case t.params.qcc[c] != nil:
		q = t.params.qcc[c]
	case t.params.qcd != nil:
		q = t.params.qcd
	case d.main.qcc[c] != nil:
		q = d.main.qcc[c]
	default:
		q = d.main.qcd
	}
	if q == nil {
		return codingStyle{}, quantization{}, FormatError("missing QCD marker")
	}
	return cod, *q, nil
}

func (d *decoder) decode() (image.Image, error) {
	if err := d.readMainHeader(); err != nil {
		return nil, err
	}
	if err := d.readTileParts(); err != nil {
		return nil, err
	}
	d.allocatePlanes()
	for i := 0; i < d.siz.tilesWide()*d.siz.tilesHigh(); i++ {
		t, ok := d.tiles[i]
		if !ok {
			continue
		}
		if err := d.cancelled(); err != nil {
			return nil, err
		}
		if err := d.decodeTile(t); err != nil {
			return nil, err
		}
	}
	return d.assemble(), nil
}

func (d *decoder) cancelled() error {
	if d.ctx == nil {
		return nil
	}
	return d.ctx.Err()
}

func (d *decoder) readMainHeader() error {
	d.r = byteReader{b: d.data}
	if d.r.u16() != markerSOC {
		return FormatError("missing SOC marker")
	}
	if d.r.u16() != markerSIZ {
		return FormatError("SIZ marker must follow SOC")
	}
	if err := d.readSIZ(); err != nil {
		return err
	}
	d.main = codingParams{coc: map[int]*componentCoding{}, qcc: map[int]*quantization{}}

	for {
		m := d.r.u16()
		if d.r.err != nil {
			return FormatError("truncated main header")
		}
		switch m {
		case markerSOT:
			d.r.pos -= 2
			return nil
		case markerCOD, markerCOC, markerQCD, markerQCC:
			if err := d.readCodingSegment(m, &d.main); err != nil {
				return err
			}
		case markerPOC:
			return UnsupportedError("progression order change")
		case markerPPM:
			return UnsupportedError("packed packet headers")
		default:
			if err := d.skipSegment(m); err != nil {
				return err
			}
		}
	}
}

func (d *decoder) readSIZ() error {
	r := &d.r
	length := r.u16()
	r.u16() // Rsiz
	s := imageSize{
		width:  int(r.u32()),
		height: int(r.u32()),
		x0:     int(r.u32()),
		y0:     int(r.u32()),
		tileW:  int(r.u32()),
		tileH:  int(r.u32()),
		tileX0: int(r.u32()),
		tileY0: int(r.u32()),
	}
	n := r.u16()
	if r.err != nil || length != 38+3*n {
		return FormatError("bad SIZ length")
	}
	if n == 0 || n > 16384 {
		return FormatError("bad component count")
	}
	if s.width <= s.x0 || s.height <= s.y0 || s.tileW == 0 || s.tileH == 0 {
		return FormatError("bad image or tile size")
	}
	if s.tileX0 > s.x0 || s.tileY0 > s.y0 || s.tileX0+s.tileW <= s.x0 || s.tileY0+s.tileH <= s.y0 {
		return FormatError("tile grid does not cover image origin")
	}
	if (s.width-s.x0) > d.maxPixels || (s.height-s.y0) > d.maxPixels ||
		(s.width-s.x0)*(s.height-s.y0) > d.maxPixels {
		return UnsupportedError("image too large")
	}
	if s.tilesWide()*s.tilesHigh() > 65535 {
		return FormatError("too many tiles")
	}
	samples := 0
	for i := 0; i < n; i++ {
		ssiz := r.u8()
		c := componentInfo{precision: ssiz&0x7F + 1, signed: ssiz&0x80 != 0, dx: r.u8(), dy: r.u8()}
		if c.dx == 0 || c.dy == 0 {
			return FormatError("zero component subsampling")
		}
		if c.precision > 16 {
			return UnsupportedError(fmt.Sprintf("%d-bit component", c.precision))
		}
		w := ceilDiv(s.width, c.dx) - ceilDiv(s.x0, c.dx)
		h := ceilDiv(s.height, c.dy) - ceilDiv(s.y0, c.dy)
		if w <= 0 || h <= 0 {
			return FormatError(fmt.Sprintf("component %d has an empty extent", i))
		}
		samples += w * h
		s.comps = append(s.comps, c)
	}
	if r.err != nil {
		return FormatError("truncated SIZ segment")
	}
	if samples > samplesPerPixel*d.maxPixels {
		return UnsupportedError("too many component samples")
	}
	d.siz = s
	return nil
}

func (d *decoder) skipSegment(m int) error {
	if m>>8 != 0xFF {
		return FormatError(fmt.Sprintf("expected marker, found %#04x", m))
	}
	length := d.r.u16()
	if d.r.err != nil || length < 2 {
		return FormatError(fmt.Sprintf("bad length for marker %#04x", m))
	}
	d.r.skip(length - 2)
	if d.r.err != nil {
		return FormatError(fmt.Sprintf("truncated marker segment %#04x", m))
	}
	return nil
}

func (d *decoder) readComponentIndex() int {
	if len(d.siz.comps) < 257 {
		return d.r.u8()
	}
	return d.r.u16()
}

func (d *decoder) readCodingSegment(m int, p *codingParams) error {
	r := &d.r
	length := r.u16()
	end := r.pos + length - 2
	if r.err != nil || length < 2 || end > len(r.b) {
		return FormatError(fmt.Sprintf("bad length for marker %#04x", m))
	}

	switch m {
	case markerCOD:
		scod := r.u8()
		cod := &codingStyle{
			progression: r.u8(),
			layers:      r.u16(),
			mct:         r.u8() != 0,
			sop:         scod&0x02 != 0,
			eph:         scod&0x04 != 0,
		}
		cc, err := d.readComponentCoding(scod&0x01 != 0, end)
		if err != nil {
			return err
		}
		cod.componentCoding = cc
		if cod.progression > progressionCPRL {
			return FormatError("unknown progression order")
		}
		if cod.layers == 0 {
			return FormatError("zero quality layers")
		}
		p.cod = cod
	case markerCOC:
		c := d.readComponentIndex()
		scoc := r.u8()
		if c >= len(d.siz.comps) {
			return FormatError("COC component out of range")
		}
		cc, err := d.readComponentCoding(scoc&0x01 != 0, end)
		if err != nil {
			return err
		}
		p.coc[c] = &cc
	case markerQCD:
		q, err := d.readQuantization(end)
		if err != nil {
			return err
		}
		p.qcd = q
	case markerQCC:
		c := d.readComponentIndex()
		if c >= len(d.siz.comps) {
			return FormatError("QCC component out of range")
		}
		q, err := d.readQuantization(end)
		if err != nil {
			return err
		}
		p.qcc[c] = q
	}
	if r.err != nil || r.pos > end {
		return FormatError(fmt.Sprintf("truncated marker segment %#04x", m))
	}
	r.pos = end
	return nil
}

func (d *decoder) readComponentCoding(userPrecincts bool, end int) (componentCoding, error) {
	r := &d.r
	cc := componentCoding{
		levels: r.u8(),
		xcb:    r.u8() + 2,
		ycb:    r.u8() + 2,
	}
	cc.cbStyle = byte(r.u8())
	cc.reversible = r.u8() == 1
	if cc.levels > 32 {
		return cc, FormatError("too many decomposition levels")
	}
	if cc.xcb > 10 || cc.ycb > 10 || cc.xcb+cc.ycb > 12 {
		return cc, FormatError("bad code-block size")
	}
	if cc.cbStyle&cbStyleBypass != 0 {
		return cc, UnsupportedError("arithmetic coding bypass")
	}
	if cc.cbStyle&cbStyleTermAll != 0 {
		return cc, UnsupportedError("termination on each coding pass")
	}
	if userPrecincts {
		for i := 0; i <= cc.levels && r.pos < end; i++ {
			b := r.u8()
			pe := precinctExp{ppx: b & 0x0F, ppy: b >> 4}
			if i > 0 && (pe.ppx == 0 || pe.ppy == 0) {
				return cc, FormatError("zero precinct size above resolution 0")
			}
			cc.precincts = append(cc.precincts, pe)
		}
	}
	return cc, nil
}

func (d *decoder) readQuantization(end int) (*quantization, error) {
	r := &d.r
	sq := r.u8()
	q := &quantization{style: sq & 0x1F, guardBits: sq >> 5}
	switch q.style {
	case quantNone:
		for r.pos < end {
			q.steps = append(q.steps, stepSize{exponent: r.u8() >> 3})
		}
	case quantDerived, quantExpanded:
		for r.pos+1 < end {
			v := r.u16()
			q.steps = append(q.steps, stepSize{exponent: v >> 11, mantissa: v & 0x7FF})
		}
	default:
		return nil, FormatError("unknown quantization style")
	}
	return q, nil
}

func (d *decoder) readTileParts() error {
	r := &d.r
	d.tiles = map[int]*tileState{}
	numTiles := d.siz.tilesWide() * d.siz.tilesHigh()

	for {
		start := r.pos
		m := r.u16()
		if r.err != nil || m == markerEOC {
			return nil
		}
		if m != markerSOT {
			return FormatError(fmt.Sprintf("expected SOT, found %#04x", m))
		}
		if r.u16() != 10 {
			return FormatError("bad SOT length")
		}
		index := r.u16()
		psot := int(r.u32())
		tilePart := r.u8()
		r.u8() // TNsot
		if r.err != nil {
			return FormatError("truncated SOT segment")
		}
		if index >= numTiles {
			return FormatError("tile index out of range")
		}
		t, ok := d.tiles[index]
		if !ok {
			t = &tileState{index: index, params: codingParams{coc: map[int]*componentCoding{}, qcc: map[int]*quantization{}}}
			d.tiles[index] = t
		}

		for {
			m = r.u16()
			if r.err != nil {
				return FormatError("truncated tile-part header")
			}
			if m == markerSOD {
				break
			}
			switch m {
			case markerCOD, markerCOC, markerQCD, markerQCC:
				if tilePart != 0 {
					return FormatError("coding marker after first tile-part")
				}
				if err := d.readCodingSegment(m, &t.params); err != nil {
					return err
				}
			case markerPOC:
				return UnsupportedError("progression order change")
			case markerPPT:
				return UnsupportedError("packed packet headers")
			default:
				if err := d.skipSegment(m); err != nil {
					return err
				}
			}
		}

		end := start + psot
		if psot == 0 || end > len(r.b) {
			// Last tile-part runs to EOC, or the stream was truncated.
			end = len(r.b)
			if end-2 >= r.pos && r.b[end-2] == 0xFF && r.b[end-1] == 0xD9 {
				end -= 2
			}
		}
		if end < r.pos {
			return FormatError("tile-part shorter than its header")
		}
		t.data = append(t.data, r.b[r.pos:end]...)
		r.pos = end
	}
}

// byteReader is a big-endian reader with a sticky error.
type byteReader struct {
	b   []byte
	pos int
	err error
}

func (r *byteReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.b) {
		r.err = FormatError("unexpected end of codestream")
		return false
	}
	return true
}

func (r *byteReader) u8() int {
	if !r.need(1) {
		return 0
	}
	v := int(r.b[r.pos])
	r.pos++
	return v
}

func (r *byteReader) u16() int {
	if !r.need(2) {
		return 0
	}
	v := int(r.b[r.pos])<<8 | int(r.b[r.pos+1])
	r.pos += 2
	return v
}

func (r *byteReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := uint32(r.b[r.pos])<<24 | uint32(r.b[r.pos+1])<<16 | uint32(r.b[r.pos+2])<<8 | uint32(r.b[r.pos+3])
	r.pos += 4
	return v
}

func (r *byteReader) skip(n int) {
	if r.need(n) {
		r.pos += n
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
