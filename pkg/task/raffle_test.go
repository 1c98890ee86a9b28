package task

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRaffleWinnersTicketWeights(t *testing.T) {
	_, total := DrawRaffleWinners([]RaffleEntry{{"A", 100}, {"B", 1}}, 0, rand.New(rand.NewSource(1)))
	// ceil(sqrt(100)) + ceil(sqrt(1))
	assert.Equal(t, 11, total)
}

func TestDrawRaffleWinnersWithoutReplacement(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	winners, _ := DrawRaffleWinners([]RaffleEntry{{"A", 9}, {"B", 4}, {"C", 1}}, 3, rng)

	require.Len(t, winners, 3)
	seen := map[string]bool{}
	for _, winner := range winners {
		assert.False(t, seen[winner], "winner %s drawn twice", winner)
		seen[winner] = true
	}
}

func TestDrawRaffleWinnersFewerEntriesThanWinners(t *testing.T) {
	winners, total := DrawRaffleWinners([]RaffleEntry{{"A", 4}}, 3, rand.New(rand.NewSource(7)))
	assert.Equal(t, []string{"A"}, winners)
	assert.Equal(t, 2, total)
}

func TestDrawRaffleWinnersWeightDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	wins := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		winners, _ := DrawRaffleWinners([]RaffleEntry{{"A", 100}, {"B", 1}}, 1, rng)
		if winners[0] == "A" {
			wins++
		}
	}
	// A holds 10 of 11 tickets, so it should win ~90.9% of single draws.
	ratio := float64(wins) / draws
	assert.InDelta(t, 10.0/11.0, ratio, 0.02)
}
