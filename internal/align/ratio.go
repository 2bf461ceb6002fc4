package align

// QuickRatio is an upper bound on the aligned ratio computed from the
// multiset intersection of a and b, ignoring order.
func QuickRatio[T comparable](a, b []T) float64 {
	avail := make(map[T]int, len(b))
	for _, sym := range b {
		avail[sym]++
	}
	matches := 0
	for _, sym := range a {
		if avail[sym] > 0 {
			avail[sym]--
			matches++
		}
	}
	return ratio(matches, len(a), len(b))
}

// RealQuickRatio bounds the ratio using only the two lengths.
func RealQuickRatio(la, lb int) float64 {
	return ratio(min(la, lb), la, lb)
}

func QuickRatioStrings(a, b string) float64 {
	return QuickRatio(runes(a), runes(b))
}
