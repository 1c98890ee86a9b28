package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/eden-guild/pianobot/api"
	"github.com/eden-guild/pianobot/bot"
	"github.com/eden-guild/pianobot/bot/command"
	"github.com/eden-guild/pianobot/bot/server"
	"github.com/eden-guild/pianobot/pkg/logging"
	"github.com/eden-guild/pianobot/pkg/notify"
	"github.com/eden-guild/pianobot/pkg/redis"
	"github.com/eden-guild/pianobot/pkg/rediskey"
	"github.com/eden-guild/pianobot/pkg/settings"
	"github.com/eden-guild/pianobot/pkg/storage"
	"github.com/eden-guild/pianobot/pkg/task"
	"github.com/eden-guild/pianobot/pkg/wynn"
)

var (
	version = "2.0.0"
	commit  = "none"
)

const (
	schedulerLockTTL     = 30 * time.Second
	schedulerLockRefresh = 10 * time.Second
	squadWorkers         = 2
)

type registeredCommand struct {
	GuildID            string
	ApplicationCommand *discordgo.ApplicationCommand
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("pianobot exited with error")
	}
}

func run() error {
	conf, err := settings.Load(os.Getenv("PIANOBOT_CONFIG"))
	if err != nil {
		return err
	}
	logging.Setup(conf.Debug)
	log.Info().Str("version", version).Str("commit", commit).Msg("starting pianobot")

	redisDriver := &redis.Driver{}
	if err := redisDriver.Init(redis.Parameters{Addr: conf.RedisAddr, Password: conf.RedisPass}); err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer redisDriver.Close()
	redisDriver.SetVersionAndCommit(version, commit)

	psql := storage.PsqlInterface{}
	if err := psql.Init(storage.ConstructPsqlConnectURL(conf.PostgresAddr, conf.PostgresUser, conf.PostgresPass)); err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer psql.Close()

	if !conf.SkipSchemaExec {
		if err := psql.LoadAndExecFromFile("./pkg/storage/postgres.sql"); err != nil {
			return fmt.Errorf("executing postgres.sql: %w", err)
		}
	}

	wynnClient := wynn.NewClient(redisDriver)

	discordBot, err := bot.MakeAndStartBot(conf, &psql, wynnClient)
	if err != nil {
		return fmt.Errorf("starting discord bot: %w", err)
	}
	defer discordBot.Close()

	notifier := notify.NewService(discordBot.PrimarySession)
	logging.AttachMirror(conf.LogChannelID, func(channelID, content string) {
		notifier.SendChannel(channelID, content, nil, "")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	squads := task.NewSquadProcessor(wynnClient, &psql, notifier, conf.RaidWebhook,
		squadWorkers, redisDriver.IncrSquadDropped)
	env := &task.Env{
		API:    wynnClient,
		Store:  &psql,
		Notify: notifier,
		Conf:   conf,
		Squads: squads,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(server.NewCollector(redisDriver))
	scheduler := task.NewScheduler(env, redisDriver, registry)

	// Only one process may drive the jobs; replicas block on the lock and
	// take over when the leader dies.
	go runSchedulerLeader(ctx, cancel, redisDriver, scheduler)

	statusApi := api.NewApi(version, commit, discordBot.PrimarySession, redisDriver, &psql, registry)
	go func() {
		if err := statusApi.StartServer(conf.APIPort); err != nil {
			log.Error().Err(err).Msg("status api server stopped")
		}
	}()

	registeredCommands := registerCommands(discordBot.PrimarySession, conf.EnableTracking)

	log.Info().Msg("pianobot is now running, press CTRL-C to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	select {
	case <-sc:
	case <-ctx.Done():
	}
	cancel()

	deregisterCommands(discordBot.PrimarySession, registeredCommands)
	return nil
}

// runSchedulerLeader obtains the scheduler lock, starts the job scheduler and
// keeps the lock refreshed. Losing the lock shuts the process down rather
// than risking two concurrent reconcilers.
func runSchedulerLeader(ctx context.Context, cancel context.CancelFunc, redisDriver *redis.Driver, scheduler *task.Scheduler) {
	locker := redislock.New(redisDriver.Client())
	lock, err := locker.Obtain(ctx, rediskey.SchedulerLock, schedulerLockTTL, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(5 * time.Second),
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Error().Err(err).Msg("failed to obtain scheduler lock")
			cancel()
		}
		return
	}
	defer lock.Release(context.Background())

	log.Info().Msg("obtained scheduler lock, starting jobs")
	if err := scheduler.Start(ctx); err != nil {
		log.Error().Err(err).Msg("failed to start scheduler")
		cancel()
		return
	}

	ticker := time.NewTicker(schedulerLockRefresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lock.Refresh(ctx, schedulerLockTTL, nil); err != nil {
				log.Error().Err(err).Msg("lost scheduler lock, shutting down")
				cancel()
				return
			}
		}
	}
}

func registerCommands(session *discordgo.Session, enableTracking bool) []registeredCommand {
	var registered []registeredCommand
	for _, v := range command.All {
		if v.Name == command.Tracking.Name && !enableTracking {
			continue
		}
		log.Info().Str("command", v.Name).Msg("registering slash command")
		created, err := session.ApplicationCommandCreate(session.State.User.ID, "", v)
		if err != nil {
			log.Error().Err(err).Str("command", v.Name).Msg("cannot create slash command")
			continue
		}
		registered = append(registered, registeredCommand{
			GuildID:            "",
			ApplicationCommand: created,
		})
	}
	log.Info().Int("count", len(registered)).Msg("finished registering slash commands")
	return registered
}

func deregisterCommands(session *discordgo.Session, registered []registeredCommand) {
	for _, v := range registered {
		log.Info().Str("command", v.ApplicationCommand.Name).Msg("deleting slash command")
		err := session.ApplicationCommandDelete(v.ApplicationCommand.ApplicationID, v.GuildID, v.ApplicationCommand.ID)
		if err != nil {
			log.Error().Err(err).Str("command", v.ApplicationCommand.Name).Msg("failed to delete slash command")
		}
	}
}
