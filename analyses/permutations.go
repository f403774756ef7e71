package analyses

// permutations calls visit with every ordered selection of k indices out of n.
// visit returns false to stop early. The slice is reused between calls.
func permutations(n, k int, visit func(idx []int) bool) {
	if k > n || k <= 0 {
		return
	}

	idx := make([]int, 0, k)
	used := make([]bool, n)

	var walk func() bool
	walk = func() bool {
		if len(idx) == k {
			return visit(idx)
		}
		for i := range n {
			if used[i] {
				continue
			}
			used[i] = true
			idx = append(idx, i)
			if !walk() {
				return false
			}
			idx = idx[:len(idx)-1]
			used[i] = false
		}
		return true
	}

	walk()
}
