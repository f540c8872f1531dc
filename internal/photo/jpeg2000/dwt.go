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

// Lifting coefficients of the irreversible 9/7 filter (Table F.4).
const (
	liftAlpha = -1.586134342059924
	liftBeta  = -0.052980118572961
	liftGamma = 0.882911075530934
	liftDelta = 0.443506852043971
	liftK     = 1.230174104914001
)

const extension = 4

// inverseDWT reconstructs the tile-component samples from its subbands (F.3.2).
func inverseDWT(tc *tileComponent) []float64 {
	ll := tc.resolutions[0].bands[0].coeffs
	reversible := tc.coding.reversible
	var buf []float64

	for r := 1; r < len(tc.resolutions); r++ {
		res := tc.resolutions[r]
		prev := tc.resolutions[r-1]
		w, h := res.x1-res.x0, res.y1-res.y0
		if w <= 0 || h <= 0 {
			ll = nil
			continue
		}
		out := make([]float64, w*h)
		interleave(out, res, prev, ll)

		if need := max(w, h) + 2*extension; cap(buf) < need {
			buf = make([]float64, need)
		}
		line := make([]float64, max(w, h))
		for y := 0; y < h; y++ {
			synthesize(out[y*w:(y+1)*w], res.x0, reversible, buf)
		}
		for x := 0; x < w; x++ {
			col := line[:h]
			for y := 0; y < h; y++ {
				col[y] = out[y*w+x]
			}
			synthesize(col, res.y0, reversible, buf)
			for y := 0; y < h; y++ {
				out[y*w+x] = col[y]
			}
		}
		ll = out
	}

	w := tc.x1 - tc.x0
	h := tc.y1 - tc.y0
	if len(ll) != w*h {
		return make([]float64, max(w*h, 0))
	}
	return ll
}

// interleave places the LL band of the previous resolution and the three detail bands
// of res onto the sample grid of res (F.3.3).
func interleave(out []float64, res, prev *resolution, ll []float64) {
	w := res.x1 - res.x0
	llw := prev.x1 - prev.x0
	hl, lh, hh := res.bands[0], res.bands[1], res.bands[2]
	at := func(b []float64, bw, x, y int) float64 {
		if b == nil {
			return 0
		}
		return b[y*bw+x]
	}
	for y := res.y0; y < res.y1; y++ {
		for x := res.x0; x < res.x1; x++ {
			var v float64
			switch {
			case x&1 == 0 && y&1 == 0:
				v = at(ll, llw, x/2-prev.x0, y/2-prev.y0)
			case y&1 == 0:
				v = at(hl.coeffs, hl.width(), x>>1-hl.x0, y>>1-hl.y0)
			case x&1 == 0:
				v = at(lh.coeffs, lh.width(), x>>1-lh.x0, y>>1-lh.y0)
			default:
				v = at(hh.coeffs, hh.width(), x>>1-hh.x0, y>>1-hh.y0)
			}
			out[(y-res.y0)*w+x-res.x0] = v
		}
	}
}

// mirror maps index i onto [0, n) by whole-sample symmetric extension.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// synthesize runs the one-dimensional inverse transform in place on x, whose first
// sample sits at absolute coordinate i0 (F.3.6).
func synthesize(x []float64, i0 int, reversible bool, buf []float64) {
	n := len(x)
	if n == 1 {
		if i0&1 == 1 {
			if reversible {
				x[0] = math.Trunc(x[0] / 2)
			} else {
				x[0] /= 2
			}
		}
		return
	}

	size := n + 2*extension
	b := buf[:size]
	for k := range b {
		b[k] = x[mirror(k-extension, n)]
	}
	// odd reports whether buffer index k holds a high-pass sample.
	odd := func(k int) bool { return (i0+k-extension)&1 == 1 }
	lift := func(wantOdd bool, f func(k int)) {
		for k := 1; k < size-1; k++ {
			if odd(k) == wantOdd {
				f(k)
			}
		}
	}

	if reversible {
		lift(false, func(k int) { b[k] -= math.Floor((b[k-1] + b[k+1] + 2) / 4) })
		lift(true, func(k int) { b[k] += math.Floor((b[k-1] + b[k+1]) / 2) })
	} else {
		for k := range b {
			if odd(k) {
				b[k] /= liftK
			} else {
				b[k] *= liftK
			}
		}
		lift(false, func(k int) { b[k] -= liftDelta * (b[k-1] + b[k+1]) })
		lift(true, func(k int) { b[k] -= liftGamma * (b[k-1] + b[k+1]) })
		lift(false, func(k int) { b[k] -= liftBeta * (b[k-1] + b[k+1]) })
		lift(true, func(k int) { b[k] -= liftAlpha * (b[k-1] + b[k+1]) })
	}
	copy(x, b[extension:extension+n])
}
