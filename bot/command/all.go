package command

import "github.com/bwmarrin/discordgo"

// All lists every slash command the bot registers at startup.
var All = []*discordgo.ApplicationCommand{
	&Activity,
	&Awards,
	&GXP,
	&LastSeen,
	&Rewards,
	&Territories,
	&Tome,
	&Tracking,
	&Wars,
	&Worlds,
}
