package task

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eden-guild/pianobot/pkg/notify"
)

const (
	squadSize        = 4
	maxResolveTries  = 2
	defaultQueueSize = 8
)

// SquadCandidate is a member flagged by the raids job as having completed a
// single raid, together with the raid counters recorded before the XP jump.
type SquadCandidate struct {
	UUID     string
	Username string
	OldRaids map[string]int
}

// SquadBatch is one raids-job tick worth of candidates.
type SquadBatch struct {
	GuildLevel int
	Members    []SquadCandidate
}

// Squad is a group of up to four members credited together for one raid.
type Squad struct {
	Raid    string
	Members []SquadCandidate
}

// SquadProcessor resolves which raid each candidate completed and posts the
// squad notifications. Work arrives through a bounded queue drained by a
// fixed pool of workers, so a burst of raids cannot pile up goroutines;
// overflow batches are dropped with a warning.
type SquadProcessor struct {
	api    API
	store  Store
	notify Notifier

	webhookURL string
	queue      chan SquadBatch
	workers    int

	// onDrop is invoked for every batch rejected on a full queue.
	onDrop func()
	// sleep is swapped out in tests.
	sleep func(time.Duration)

	startOnce sync.Once
}

func NewSquadProcessor(api API, store Store, notifier Notifier, webhookURL string, workers int, onDrop func()) *SquadProcessor {
	if workers < 1 {
		workers = 1
	}
	return &SquadProcessor{
		api:        api,
		store:      store,
		notify:     notifier,
		webhookURL: webhookURL,
		queue:      make(chan SquadBatch, defaultQueueSize),
		workers:    workers,
		onDrop:     onDrop,
		sleep:      time.Sleep,
	}
}

// Start launches the worker pool. Workers exit when ctx is canceled.
func (p *SquadProcessor) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			go p.worker(ctx)
		}
	})
}

// Enqueue hands a batch to the pool, reporting false when the queue is full.
func (p *SquadProcessor) Enqueue(batch SquadBatch) bool {
	select {
	case p.queue <- batch:
		return true
	default:
		log.Warn().Int("members", len(batch.Members)).Msg("squad queue full, dropping batch")
		if p.onDrop != nil {
			p.onDrop()
		}
		return false
	}
}

func (p *SquadProcessor) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-p.queue:
			p.process(ctx, batch)
		}
	}
}

func (p *SquadProcessor) process(ctx context.Context, batch SquadBatch) {
	type result struct {
		candidate SquadCandidate
		raid      string
	}

	results := make([]result, len(batch.Members))
	var wg sync.WaitGroup
	for i, candidate := range batch.Members {
		wg.Add(1)
		go func(i int, candidate SquadCandidate) {
			defer wg.Done()
			raid := p.resolveRaid(ctx, candidate)
			results[i] = result{candidate, raid}
		}(i, candidate)
	}
	wg.Wait()

	completions := map[string][]SquadCandidate{}
	var unknown []SquadCandidate
	for _, r := range results {
		if r.raid != "" {
			completions[r.raid] = append(completions[r.raid], r.candidate)
		} else {
			unknown = append(unknown, r.candidate)
		}
	}

	reward, err := p.store.GetRewardConfig()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load reward config, skipping squad rewards")
		return
	}

	for _, squad := range GroupSquads(completions, unknown) {
		names := make([]string, len(squad.Members))
		for i, member := range squad.Members {
			names[i] = member.Username
			if err := p.store.AddRaidLog(member.UUID, squad.Raid); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to log raid completion")
			}
			if err := p.store.AddPendingRaid(member.Username, reward.EmeraldsPerRaid); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to add pending raid reward")
			}
		}
		p.notify.SendWebhook(p.webhookURL, "Eden Guild Raid Tracking", "",
			notify.RaidSquadEmbed(squad.Raid, names, batch.GuildLevel, reward.EmeraldsPerRaid))
	}
}

// resolveRaid polls the player profile until exactly one raid counter has
// advanced past the recorded baseline. The API caches responses, so a stale
// read sleeps out the remaining cache lifetime (reported via the Age header)
// and retries, at most twice, before giving up with "".
func (p *SquadProcessor) resolveRaid(ctx context.Context, candidate SquadCandidate) string {
	oldTotal := 0
	for _, count := range candidate.OldRaids {
		oldTotal += count
	}

	for tries := 0; ; tries++ {
		player, age, err := p.api.PlayerUncached(ctx, candidate.UUID)
		if err != nil {
			if tries >= maxResolveTries {
				return ""
			}
			continue
		}
		total := 0
		for _, count := range player.Raids {
			total += count
		}
		if total == oldTotal {
			if tries >= maxResolveTries {
				return ""
			}
			if wait := 121 - age; wait > 0 {
				p.sleep(time.Duration(wait) * time.Second)
			}
			continue
		}
		for raid, count := range player.Raids {
			if count-candidate.OldRaids[raid] == 1 {
				return raid
			}
		}
		return ""
	}
}

// GroupSquads splits per-raid completions into squads of up to four. Members
// whose raid could not be identified fill the open slots, but only when the
// unknown count matches the open-slot count exactly; otherwise attribution
// would be a guess and the unknowns are dropped.
func GroupSquads(completions map[string][]SquadCandidate, unknown []SquadCandidate) []Squad {
	openSlots := 0
	raids := make([]string, 0, len(completions))
	for raid, members := range completions {
		raids = append(raids, raid)
		openSlots += (squadSize - len(members)%squadSize) % squadSize
	}
	sort.Strings(raids)
	fillUnknown := len(unknown) == openSlots && openSlots > 0

	var squads []Squad
	for _, raid := range raids {
		members := completions[raid]
		for i := 0; i < int(math.Ceil(float64(len(members))/squadSize)); i++ {
			end := (i + 1) * squadSize
			if end > len(members) {
				end = len(members)
			}
			squad := append([]SquadCandidate{}, members[i*squadSize:end]...)
			for fillUnknown && len(squad) < squadSize {
				squad = append(squad, unknown[len(unknown)-1])
				unknown = unknown[:len(unknown)-1]
			}
			squads = append(squads, Squad{Raid: raid, Members: squad})
		}
	}
	return squads
}
