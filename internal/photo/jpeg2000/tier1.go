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

// Context labels of the tier-1 coder.
const (
	ctxSignBase   = 9
	ctxRefineBase = 14
	ctxRunLength  = 17
	ctxUniform    = 18
	numContexts   = 19
)

const (
	flagSignificant = 1 << iota
	flagVisited
	flagRefined
	flagNegative
)

// t1Decoder decodes the coding passes of one code-block (Annex D).
type t1Decoder struct {
	w, h        int
	stride      int
	orientation int
	style       byte
	flags       []uint8
	mag         []int32
	ctx         [numContexts]mqContext
	mq          mqDecoder
}

func (t *t1Decoder) reset(w, h, orientation int, style byte, data []byte) {
	t.w, t.h = w, h
	t.stride = w + 2
	t.orientation = orientation
	t.style = style
	n := (w + 2) * (h + 2)
	if cap(t.flags) < n {
		t.flags = make([]uint8, n)
	}
	t.flags = t.flags[:n]
	clear(t.flags)
	if cap(t.mag) < w*h {
		t.mag = make([]int32, w*h)
	}
	t.mag = t.mag[:w*h]
	clear(t.mag)
	t.resetContexts()
	t.mq.init(data)
}

func (t *t1Decoder) resetContexts() {
	for i := range t.ctx {
		t.ctx[i] = mqContext{}
	}
	t.ctx[0].index = 4
	t.ctx[ctxRunLength].index = 3
	t.ctx[ctxUniform].index = 46
}

func (t *t1Decoder) fi(x, y int) int { return (y+1)*t.stride + x + 1 }

// causalEdge reports whether the row below y must be ignored in vertically causal mode.
func (t *t1Decoder) causalEdge(y int) bool {
	return t.style&cbStyleVertCausal != 0 && y%4 == 3
}

func (t *t1Decoder) sig(i int) int { return int(t.flags[i] & flagSignificant) }

func (t *t1Decoder) neighbours(x, y int) (h, v, d int) {
	i, s := t.fi(x, y), t.stride
	h = t.sig(i-1) + t.sig(i+1)
	v = t.sig(i - s)
	d = t.sig(i-s-1) + t.sig(i-s+1)
	if !t.causalEdge(y) {
		v += t.sig(i + s)
		d += t.sig(i+s-1) + t.sig(i+s+1)
	}
	return h, v, d
}

// zeroCodingContext implements Table D.1.
func zeroCodingContext(orientation, h, v, d int) int {
	if orientation == bandHH {
		hv := h + v
		switch {
		case d >= 3:
			return 8
		case d == 2:
			if hv >= 1 {
				return 7
			}
			return 6
		case d == 1:
			switch {
			case hv >= 2:
				return 5
			case hv == 1:
				return 4
			}
			return 3
		}
		switch {
		case hv >= 2:
			return 2
		case hv == 1:
			return 1
		}
		return 0
	}

	if orientation == bandHL {
		h, v = v, h
	}
	switch h {
	case 2:
		return 8
	case 1:
		switch {
		case v >= 1:
			return 7
		case d >= 1:
			return 6
		}
		return 5
	}
	switch {
	case v == 2:
		return 4
	case v == 1:
		return 3
	case d >= 2:
		return 2
	case d == 1:
		return 1
	}
	return 0
}

func (t *t1Decoder) contribution(i int) int {
	f := t.flags[i]
	switch {
	case f&flagSignificant == 0:
		return 0
	case f&flagNegative != 0:
		return -1
	}
	return 1
}

func clampUnit(v int) int {
	return max(-1, min(1, v))
}

// signContext implements Table D.3, returning the context and the XOR bit.
func (t *t1Decoder) signContext(x, y int) (int, int) {
	i, s := t.fi(x, y), t.stride
	hc := clampUnit(t.contribution(i-1) + t.contribution(i+1))
	vsum := t.contribution(i - s)
	if !t.causalEdge(y) {
		vsum += t.contribution(i + s)
	}
	vc := clampUnit(vsum)

	xor := 0
	if hc < 0 || (hc == 0 && vc < 0) {
		hc, vc, xor = -hc, -vc, 1
	}
	if hc == 1 {
		return ctxSignBase + 3 + vc, xor
	}
	if vc == 0 {
		return ctxSignBase, xor
	}
	return ctxSignBase + 1, xor
}

func (t *t1Decoder) decodeSign(x, y int) {
	cx, xor := t.signContext(x, y)
	if t.mq.decode(&t.ctx[cx])^xor == 1 {
		t.flags[t.fi(x, y)] |= flagNegative
	}
}

func (t *t1Decoder) becomeSignificant(x, y int, one int32) {
	t.decodeSign(x, y)
	t.mag[y*t.w+x] |= one
	t.flags[t.fi(x, y)] |= flagSignificant
}

func (t *t1Decoder) significancePass(one int32) {
	for y0 := 0; y0 < t.h; y0 += 4 {
		for x := 0; x < t.w; x++ {
			for y := y0; y < min(y0+4, t.h); y++ {
				i := t.fi(x, y)
				if t.flags[i]&flagSignificant != 0 {
					continue
				}
				h, v, d := t.neighbours(x, y)
				if h+v+d == 0 {
					continue
				}
				t.flags[i] |= flagVisited
				if t.mq.decode(&t.ctx[zeroCodingContext(t.orientation, h, v, d)]) == 1 {
					t.becomeSignificant(x, y, one)
				}
			}
		}
	}
}

func (t *t1Decoder) refinementPass(one int32) {
	for y0 := 0; y0 < t.h; y0 += 4 {
		for x := 0; x < t.w; x++ {
			for y := y0; y < min(y0+4, t.h); y++ {
				i := t.fi(x, y)
				if t.flags[i]&(flagSignificant|flagVisited) != flagSignificant {
					continue
				}
				cx := ctxRefineBase + 2
				if t.flags[i]&flagRefined == 0 {
					cx = ctxRefineBase
					if h, v, d := t.neighbours(x, y); h+v+d > 0 {
						cx++
					}
				}
				if t.mq.decode(&t.ctx[cx]) == 1 {
					t.mag[y*t.w+x] |= one
				}
				t.flags[i] |= flagRefined
			}
		}
	}
}

func (t *t1Decoder) cleanupPass(one int32) {
	for y0 := 0; y0 < t.h; y0 += 4 {
		for x := 0; x < t.w; x++ {
			start := y0
			if y0+4 <= t.h && t.runLengthEligible(x, y0) {
				if t.mq.decode(&t.ctx[ctxRunLength]) == 0 {
					continue
				}
				r := t.mq.decode(&t.ctx[ctxUniform]) << 1
				r |= t.mq.decode(&t.ctx[ctxUniform])
				t.becomeSignificant(x, y0+r, one)
				start = y0 + r + 1
			}
			for y := start; y < min(y0+4, t.h); y++ {
				i := t.fi(x, y)
				if t.flags[i]&(flagSignificant|flagVisited) != 0 {
					continue
				}
				h, v, d := t.neighbours(x, y)
				if t.mq.decode(&t.ctx[zeroCodingContext(t.orientation, h, v, d)]) == 1 {
					t.becomeSignificant(x, y, one)
				}
			}
		}
	}
	if t.style&cbStyleSegmentation != 0 {
		for i := 0; i < 4; i++ {
			t.mq.decode(&t.ctx[ctxUniform])
		}
	}
}

func (t *t1Decoder) runLengthEligible(x, y0 int) bool {
	for y := y0; y < y0+4; y++ {
		if t.flags[t.fi(x, y)]&(flagSignificant|flagVisited) != 0 {
			return false
		}
		if h, v, d := t.neighbours(x, y); h+v+d != 0 {
			return false
		}
	}
	return true
}

func (t *t1Decoder) clearVisited() {
	for i := range t.flags {
		t.flags[i] &^= flagVisited
	}
}

// decode runs up to passes coding passes starting with a cleanup pass on the most
// significant of numbps bit-planes. It returns the bit-plane of the last pass run.
func (t *t1Decoder) decode(passes, numbps int) int {
	plane := numbps - 1
	last := plane
	kind := 2
	for i := 0; i < passes && plane >= 0; i++ {
		one := int32(1) << uint(plane)
		switch kind {
		case 0:
			t.significancePass(one)
		case 1:
			t.refinementPass(one)
		case 2:
			t.cleanupPass(one)
		}
		if t.style&cbStyleReset != 0 {
			t.resetContexts()
		}
		last = plane
		kind++
		if kind == 3 {
			kind = 0
			plane--
			t.clearVisited()
		}
	}
	return last
}

// store dequantizes the decoded magnitudes into the subband coefficients.
func (t *t1Decoder) store(band *subband, cb *codeBlock, lastPlane int, reversible bool) {
	if band.coeffs == nil {
		return
	}
	bw := band.width()
	half := 0.0
	if !reversible {
		half = float64(int64(1)<<uint(lastPlane)) / 2
	}
	for y := 0; y < t.h; y++ {
		row := (cb.y0-band.y0+y)*bw + cb.x0 - band.x0
		for x := 0; x < t.w; x++ {
			m := t.mag[y*t.w+x]
			if m == 0 {
				continue
			}
			v := (float64(m) + half) * band.delta
			if t.flags[t.fi(x, y)]&flagNegative != 0 {
				v = -v
			}
			band.coeffs[row+x] = v
		}
	}
}
