package bracket

// seedOrder lists, slot by slot, which seed occupies each bracket slot
// of a size-N single-elimination draw. It is built by iterative
// doubling: each seed s of a size-k draw is joined by its complement
// 2k+1-s when the draw doubles. The resulting placement keeps seeds 1
// and 2 in opposite halves, so they can only meet in the final.
func seedOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		k := len(order)
		next := make([]int, 0, k*2)
		for _, s := range order {
			next = append(next, s, 2*k+1-s)
		}
		order = next
	}
	return order
}

// SlotForSeed returns the 1-based bracket slot the given seed occupies
// in a draw of the given size, or 0 when out of range.
func SlotForSeed(seed, size int) int {
	if seed < 1 || seed > size || !isPowerOfTwo(size) {
		return 0
	}
	for i, s := range seedOrder(size) {
		if s == seed {
			return i + 1
		}
	}
	return 0
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
