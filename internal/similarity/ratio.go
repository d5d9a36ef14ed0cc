// Package similarity scores how alike two strings are by their matching blocks.
//
// The score is the classic matching-block ratio 2*M/T, where T is the total
// rune count of both strings and M is the number of runes in the matching
// blocks found by repeatedly taking the longest common contiguous block and
// recursing on the pieces to its left and right. Results are reproducible
// bit-for-bit against other implementations of the same algorithm,
// including the automatic pruning of popular runes in long inputs.
package similarity

// autojunkMinLen is the length of b from which popular runes are pruned.
const autojunkMinLen = 200

// Ratio returns the similarity of a and b in [0, 1].
// Two empty strings are identical and score 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	m := newMatcher(ra, rb)
	return 2 * float64(m.matchedRunes()) / float64(total)
}

type block struct {
	i, j, size int
}

type matcher struct {
	a, b []rune
	// b2j maps each rune of b to its ascending positions, popular runes excluded.
	b2j map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int)
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	if n := len(b); n >= autojunkMinLen {
		limit := n/100 + 1
		for r, idx := range b2j {
			if len(idx) > limit {
				delete(b2j, r)
			}
		}
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// matchedRunes sums the sizes of all matching blocks.
func (m *matcher) matchedRunes() int {
	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	matched := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		x := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if x.size == 0 {
			continue
		}
		matched += x.size
		if s.alo < x.i && s.blo < x.j {
			queue = append(queue, span{s.alo, x.i, s.blo, x.j})
		}
		if x.i+x.size < s.ahi && x.j+x.size < s.bhi {
			queue = append(queue, span{x.i + x.size, s.ahi, x.j + x.size, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] inside
// a[alo:ahi] and b[blo:bhi]. Among equally long blocks it returns the one
// starting earliest in a, then earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) block {
	best := block{i: alo, j: blo}

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		j2len = next
	}

	// Grow the block over equal runes that were pruned as popular.
	for best.i > alo && best.j > blo && m.a[best.i-1] == m.b[best.j-1] {
		best.i--
		best.j--
		best.size++
	}
	for best.i+best.size < ahi && best.j+best.size < bhi &&
		m.a[best.i+best.size] == m.b[best.j+best.size] {
		best.size++
	}
	return best
}
