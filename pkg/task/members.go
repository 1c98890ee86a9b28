package task

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/eden-guild/pianobot/pkg/notify"
	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

// Members reconciles the stored roster mirror against the live guild roster:
// inserts and announces joins, detects name and rank changes, silently
// follows XP, and removes and announces leavers.
func Members(ctx context.Context, env *Env) error {
	guild, err := env.API.Guild(ctx, env.Conf.HomeGuild)
	if err != nil {
		return fmt.Errorf("fetching guild %s: %w", env.Conf.HomeGuild, err)
	}

	stored, err := env.Store.GetAllMembers()
	if err != nil {
		return fmt.Errorf("loading stored roster: %w", err)
	}
	known := make(map[string]*storage.Member, len(stored))
	for _, member := range stored {
		known[member.UUID] = member
	}

	for _, member := range guild.Members {
		saved, ok := known[member.UUID]
		if !ok {
			memberJoined(ctx, env, guild.Name, member)
			continue
		}
		delete(known, member.UUID)

		if member.Username != saved.Name {
			if err := env.Store.UpdateMemberName(member.UUID, member.Username); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to update member name")
			} else {
				env.Notify.SendWebhook(env.Conf.MemberWebhook, "Eden Guild Log", "",
					notify.NameChangeEmbed(saved.Name, member.Username, member.Rank.String(), member.UUID))
			}
		}
		if member.Rank.String() != saved.Rank {
			memberRankChanged(env, member, saved.Rank)
		}
		if member.ContributedXP != saved.ContributedXP {
			if err := env.Store.UpdateMemberXP(member.UUID, member.ContributedXP); err != nil {
				log.Warn().Err(err).Str("player", member.Username).Msg("failed to update member xp")
			}
		}
	}

	// Whatever is left in known was not in the live roster.
	for uuid, member := range known {
		if err := env.Store.RemoveMember(uuid); err != nil {
			log.Warn().Err(err).Str("player", member.Name).Msg("failed to remove departed member")
			continue
		}
		// The raid XP baseline goes too; a returning member starts fresh.
		if err := env.Store.RemoveRaidMember(uuid); err != nil {
			log.Warn().Err(err).Str("player", member.Name).Msg("failed to remove raid baseline of departed member")
		}
		env.Notify.SendWebhook(env.Conf.MemberWebhook, "Eden Guild Log", "",
			notify.LeaveEmbed(guild.Name, member.Name, uuid, member.Rank, member.Joined, member.ContributedXP))
	}
	return nil
}

func memberJoined(ctx context.Context, env *Env, guildName string, member wynn.Member) {
	if err := env.Store.AddMember(member.UUID, member.Joined, member.Username, member.Rank.String(), member.ContributedXP); err != nil {
		log.Warn().Err(err).Str("player", member.Username).Msg("failed to add new member")
		return
	}

	// The profile lines are best-effort extras on the join announcement.
	profile := ""
	player, err := env.API.Player(ctx, member.UUID)
	if err != nil {
		log.Warn().Err(err).Str("player", member.Username).Msg("failed to fetch player profile for join notice")
	} else {
		profile = fmt.Sprintf("First join: <t:%d>\nPlaytime: %d hours\nTotal level: %d",
			player.FirstJoin.Unix(),
			int(math.Round(player.Playtime*wynn.PlaytimeHourFactor)),
			player.TotalLevel)
	}
	env.Notify.SendWebhook(env.Conf.MemberWebhook, "Eden Guild Log", "",
		notify.JoinEmbed(guildName, member.Username, member.UUID, member.Joined, profile))
}

func memberRankChanged(env *Env, member wynn.Member, oldRank string) {
	if err := env.Store.UpdateMemberRank(member.UUID, member.Rank.String()); err != nil {
		log.Warn().Err(err).Str("player", member.Username).Msg("failed to update member rank")
		return
	}
	// Direction comes from the rank ordinals, not from string comparison.
	promotion := true
	if old, err := wynn.ParseRank(oldRank); err == nil {
		promotion = member.Rank > old
	}
	env.Notify.SendWebhook(env.Conf.MemberWebhook, "Eden Guild Log", "",
		notify.RankChangeEmbed(member.Username, oldRank, member.Rank.String(), member.UUID, promotion))
}
