package task

import (
	"math"
	"math/rand"
)

// RaffleEntry is one member's raid count going into the cycle raffle.
type RaffleEntry struct {
	Name  string
	Count int
}

// DrawRaffleWinners draws n winners without replacement, weighted by
// ceil(sqrt(raid count)) tickets per entry. Returns the winners in draw
// order plus the total number of tickets in the pot.
func DrawRaffleWinners(entries []RaffleEntry, n int, rng *rand.Rand) ([]string, int) {
	type ticketed struct {
		name    string
		tickets int
	}
	pool := make([]ticketed, 0, len(entries))
	total := 0
	for _, e := range entries {
		tickets := int(math.Ceil(math.Sqrt(float64(e.Count))))
		pool = append(pool, ticketed{e.Name, tickets})
		total += tickets
	}

	winners := make([]string, 0, n)
	remaining := total
	for len(winners) < n && len(pool) > 0 && remaining > 0 {
		pick := rng.Intn(remaining)
		for i, entry := range pool {
			pick -= entry.tickets
			if pick < 0 {
				winners = append(winners, entry.name)
				remaining -= entry.tickets
				pool = append(pool[:i], pool[i+1:]...)
				break
			}
		}
	}
	return winners, total
}
