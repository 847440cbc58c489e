package core

// IsChronological reports whether monthly aggregates are strictly ascending by
// (year, month). Components read the last element as the current month and rely on it.
func IsChronological(months []MonthlyAggregate) bool {
	for i := 1; i < len(months); i++ {
		prev, cur := months[i-1], months[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Month <= prev.Month) {
			return false
		}
	}
	return true
}

// IsMostRecentFirst reports whether transactions are ordered newest first.
func IsMostRecentFirst(txs []Transaction) bool {
	for i := 1; i < len(txs); i++ {
		if txs[i].When().After(txs[i-1].When().Time) {
			return false
		}
	}
	return true
}
