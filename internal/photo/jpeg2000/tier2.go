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
	"errors"
	"sort"
)

var errPacketHeaderTruncated = errors.New("jpeg2000: packet header truncated")

// packetBits reads packet header bits, skipping the stuffed bit after each 0xFF byte.
type packetBits struct {
	data   []byte
	pos    int
	buf    byte
	n      int
	lastFF bool
}

func (b *packetBits) bit() (int, error) {
	if b.n == 0 {
		if b.pos >= len(b.data) {
			return 0, errPacketHeaderTruncated
		}
		v := b.data[b.pos]
		b.pos++
		if b.lastFF {
			b.buf, b.n = v&0x7F, 7
		} else {
			b.buf, b.n = v, 8
		}
		b.lastFF = v == 0xFF
	}
	b.n--
	return int(b.buf>>uint(b.n)) & 1, nil
}

func (b *packetBits) bits(n int) (int, error) {
	v := 0
	for i := 0; i < n; i++ {
		x, err := b.bit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | x
	}
	return v, nil
}

// align discards the remaining bits of the current byte and a stuffed byte after 0xFF.
func (b *packetBits) align() {
	b.n = 0
	if b.lastFF {
		b.pos++
		b.lastFF = false
	}
}

// codingPasses decodes the number of new coding passes (Table B.4).
func (b *packetBits) codingPasses() (int, error) {
	steps := []struct{ width, limit, base int }{
		{1, 1, 1},
		{1, 1, 2},
		{2, 3, 3},
		{5, 31, 6},
		{7, 128, 37},
	}
	for _, s := range steps {
		v, err := b.bits(s.width)
		if err != nil {
			return 0, err
		}
		if v < s.limit {
			return v + s.base, nil
		}
	}
	return 0, FormatError("bad coding pass count")
}

const tagTreeInfinity = 1 << 30

type tagNode struct {
	parent int
	value  int
	low    int
}

// tagTree is a decoder for the tag trees of section B.10.2.
type tagTree struct {
	nodes []tagNode
}

func newTagTree(w, h int) *tagTree {
	if w <= 0 || h <= 0 {
		return nil
	}
	type level struct{ w, h, offset int }
	var levels []level
	total := 0
	for {
		levels = append(levels, level{w, h, total})
		total += w * h
		if w == 1 && h == 1 {
			break
		}
		w, h = (w+1)/2, (h+1)/2
	}
	t := &tagTree{nodes: make([]tagNode, total)}
	for li, l := range levels {
		for y := 0; y < l.h; y++ {
			for x := 0; x < l.w; x++ {
				n := &t.nodes[l.offset+y*l.w+x]
				n.value = tagTreeInfinity
				n.parent = -1
				if li+1 < len(levels) {
					pl := levels[li+1]
					n.parent = pl.offset + (y/2)*pl.w + x/2
				}
			}
		}
	}
	return t
}

// decode reports whether the value of leaf is below threshold, reading as many bits as
// needed to decide.
func (t *tagTree) decode(b *packetBits, leaf, threshold int) (bool, error) {
	var path [32]int
	depth := 0
	for n := leaf; n >= 0; n = t.nodes[n].parent {
		path[depth] = n
		depth++
	}
	low := 0
	for i := depth - 1; i >= 0; i-- {
		node := &t.nodes[path[i]]
		if low > node.low {
			node.low = low
		} else {
			low = node.low
		}
		for low < threshold && low < node.value {
			bit, err := b.bit()
			if err != nil {
				return false, err
			}
			if bit == 1 {
				node.value = low
			} else {
				low++
			}
		}
		node.low = low
	}
	return t.nodes[leaf].value < threshold, nil
}

type packetRef struct {
	layer, res, comp, prec int
	px, py                 int
}

// packetOrder lists the packets of a tile in its progression order.
func packetOrder(t *tile, dx, dy []int) []packetRef {
	var refs []packetRef
	for c, tc := range t.comps {
		for _, res := range tc.resolutions {
			n := tc.coding.levels - res.level
			pw := pow2(res.ppx)
			ph := pow2(res.ppy)
			for p := 0; p < res.numPrecincts(); p++ {
				i, j := p%res.precinctsWide, p/res.precinctsWide
				px, py := t.x0, t.y0
				if i > 0 {
					px = ((res.x0>>uint(res.ppx) + i) * pw << uint(n)) * dx[c]
				}
				if j > 0 {
					py = ((res.y0>>uint(res.ppy) + j) * ph << uint(n)) * dy[c]
				}
				for l := 0; l < t.coding.layers; l++ {
					refs = append(refs, packetRef{layer: l, res: res.level, comp: c, prec: p, px: px, py: py})
				}
			}
		}
	}

	var keys func(p packetRef) [5]int
	switch t.coding.progression {
	case progressionLRCP:
		keys = func(p packetRef) [5]int { return [5]int{p.layer, p.res, p.comp, p.prec, 0} }
	case progressionRLCP:
		keys = func(p packetRef) [5]int { return [5]int{p.res, p.layer, p.comp, p.prec, 0} }
	case progressionRPCL:
		keys = func(p packetRef) [5]int { return [5]int{p.res, p.py, p.px, p.comp, p.layer} }
	case progressionPCRL:
		keys = func(p packetRef) [5]int { return [5]int{p.py, p.px, p.comp, p.res, p.layer} }
	default:
		keys = func(p packetRef) [5]int { return [5]int{p.comp, p.py, p.px, p.res, p.layer} }
	}
	sort.SliceStable(refs, func(a, b int) bool {
		ka, kb := keys(refs[a]), keys(refs[b])
		for i := range ka {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		return false
	})
	return refs
}

type pendingBlock struct {
	cb     *codeBlock
	passes int
	length int
}

// parsePackets reads every packet of a tile, attaching the compressed data to its code
// blocks. A truncated stream stops parsing without error so that the data received so
// far can still be decoded.
func parsePackets(t *tile, data []byte) error {
	dx := make([]int, len(t.comps))
	dy := make([]int, len(t.comps))
	for c, tc := range t.comps {
		// Recover the subsampling factor from the tile extent.
		dx[c], dy[c] = 1, 1
		if w := tc.x1 - tc.x0; w > 0 && (t.x1-t.x0) > w {
			dx[c] = ceilDiv(t.x1-t.x0, w)
		}
		if h := tc.y1 - tc.y0; h > 0 && (t.y1-t.y0) > h {
			dy[c] = ceilDiv(t.y1-t.y0, h)
		}
	}

	pos := 0
	var pending []pendingBlock
	for _, ref := range packetOrder(t, dx, dy) {
		if pos >= len(data) {
			return nil
		}
		if t.coding.sop && pos+6 <= len(data) && data[pos] == 0xFF && data[pos+1] == 0x91 {
			pos += 6
		}
		b := &packetBits{data: data, pos: pos}
		pending = pending[:0]
		res := t.comps[ref.comp].resolutions[ref.res]

		present, err := b.bit()
		if err != nil {
			return nil
		}
		if present == 1 {
			for _, band := range res.bands {
				p := band.precincts[ref.prec]
				for idx, cb := range p.blocks {
					pb, err := readBlockHeader(b, p, idx, cb, ref.layer)
					if err != nil {
						if errors.Is(err, errPacketHeaderTruncated) {
							return nil
						}
						return err
					}
					if pb.passes > 0 {
						pending = append(pending, pb)
					}
				}
			}
		}
		b.align()
		pos = b.pos
		if t.coding.eph && pos+2 <= len(data) && data[pos] == 0xFF && data[pos+1] == 0x92 {
			pos += 2
		}

		for _, pb := range pending {
			end := pos + pb.length
			if end > len(data) {
				end = len(data)
			}
			pb.cb.data = append(pb.cb.data, data[pos:end]...)
			pb.cb.passes += pb.passes
			pos = end
		}
	}
	return nil
}

func readBlockHeader(b *packetBits, p *precinct, idx int, cb *codeBlock, layer int) (pendingBlock, error) {
	var included bool
	var err error
	firstInclusion := !cb.included
	if firstInclusion {
		included, err = p.inclusion.decode(b, idx, layer+1)
	} else {
		var bit int
		bit, err = b.bit()
		included = bit == 1
	}
	if err != nil || !included {
		return pendingBlock{}, err
	}

	if firstInclusion {
		i := 0
		for {
			ok, err := p.zeroPlanes.decode(b, idx, i)
			if err != nil {
				return pendingBlock{}, err
			}
			if ok {
				break
			}
			i++
			if i > 64 {
				return pendingBlock{}, FormatError("bad zero bit-plane count")
			}
		}
		cb.zeroBitPlanes = i - 1
		cb.included = true
	}

	passes, err := b.codingPasses()
	if err != nil {
		return pendingBlock{}, err
	}
	for {
		bit, err := b.bit()
		if err != nil {
			return pendingBlock{}, err
		}
		if bit == 0 {
			break
		}
		cb.lblock++
	}
	length, err := b.bits(cb.lblock + floorLog2(passes))
	if err != nil {
		return pendingBlock{}, err
	}
	return pendingBlock{cb: cb, passes: passes, length: length}, nil
}

func floorLog2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}
