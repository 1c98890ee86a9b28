// Package logging configures the global zerolog logger and the optional
// Discord log-channel mirror.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs the global logger. Debug enables the console writer and
// debug-level output; otherwise JSON at info level.
func Setup(debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// SendFunc delivers one log line to a Discord channel.
type SendFunc func(channelID, content string)

// DiscordMirror is a zerolog hook that forwards warn-and-above records to a
// Discord channel. Delivery failures are the sink's problem, never the
// logger's.
type DiscordMirror struct {
	ChannelID string
	Send      SendFunc
}

func (m DiscordMirror) Run(e *zerolog.Event, level zerolog.Level, message string) {
	if level < zerolog.WarnLevel || m.ChannelID == "" || m.Send == nil || message == "" {
		return
	}
	go m.Send(m.ChannelID, "`"+level.String()+"` "+message)
}

// AttachMirror adds the mirror hook to the global logger.
func AttachMirror(channelID string, send SendFunc) {
	log.Logger = log.Logger.Hook(DiscordMirror{ChannelID: channelID, Send: send})
}
