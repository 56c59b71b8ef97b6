package brackets

// Pair is one required opponent combination of a pool, as 1-based positions in the
// ascending-weight roster. A is always lower than B.
type Pair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// BoutCount returns the number of bouts of a round-robin pool of size n.
func BoutCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Pairings returns the canonical round-robin order for a pool of n competitors.
//
// The order is a circle schedule laid out so that the first round pairs 1-2, 3-4, ...
// and nobody fights twice in a row inside a round. For odd n a phantom slot gives one
// competitor a rest each round. The index of a pair in the result is the bout number
// shown to table operators, so the order depends on n alone and must never change.
func Pairings(n int) []Pair {
	if n < 2 {
		return []Pair{}
	}

	slots := n
	if slots%2 == 1 {
		slots++ // phantom bye
	}
	half := slots / 2

	// Slot 1 is fixed. The others sit on a circle: top row left to right, then the bottom
	// row right to left. Initial rows are top = 1,3,5,... and bottom = 2,4,6,...
	circle := make([]int, 0, slots-1)
	for i := 1; i < half; i++ {
		circle = append(circle, 2*i+1)
	}
	for i := half - 1; i >= 0; i-- {
		circle = append(circle, 2*i+2)
	}

	pairs := make([]Pair, 0, BoutCount(n))
	for round := 0; round < slots-1; round++ {
		top := make([]int, 0, half)
		top = append(top, 1)
		top = append(top, circle[:half-1]...)
		bottom := make([]int, 0, half)
		for i := len(circle) - 1; i >= half-1; i-- {
			bottom = append(bottom, circle[i])
		}

		for i := 0; i < half; i++ {
			a, b := top[i], bottom[i]
			if a > n || b > n {
				continue
			}
			if a > b {
				a, b = b, a
			}
			pairs = append(pairs, Pair{A: a, B: b})
		}

		// rotate clockwise by one
		last := circle[len(circle)-1]
		copy(circle[1:], circle[:len(circle)-1])
		circle[0] = last
	}
	return pairs
}
