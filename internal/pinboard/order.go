package pinboard

import (
	"math/rand/v2"
	"strings"
)

// Order selects how a fetched list is arranged before playback.
type Order string

const (
	OrderNewest Order = "newest" // provider order, unchanged
	OrderOldest Order = "oldest" // provider order, reversed
	OrderRandom Order = "random" // uniform shuffle
)

// ParseOrder maps a stored preference to an Order, defaulting to newest.
func ParseOrder(s string) Order {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case OrderOldest:
		return OrderOldest
	case OrderRandom:
		return OrderRandom
	default:
		return OrderNewest
	}
}

// Next cycles newest → oldest → random → newest.
func (o Order) Next() Order {
	switch o {
	case OrderNewest:
		return OrderOldest
	case OrderOldest:
		return OrderRandom
	default:
		return OrderNewest
	}
}

// Apply returns a reordered copy of items. rng may be nil to use the global source.
func (o Order) Apply(items []Pin, rng *rand.Rand) []Pin {
	out := make([]Pin, len(items))
	copy(out, items)
	switch o {
	case OrderOldest:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	case OrderRandom:
		shuffle(out, rng)
	}
	return out
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(items []Pin, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		items[i], items[j] = items[j], items[i]
	}
}
