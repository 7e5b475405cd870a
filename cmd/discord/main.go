// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keshon/lavacog/internal/command"
	"github.com/keshon/lavacog/internal/command/music"
	"github.com/keshon/lavacog/internal/config"
	"github.com/keshon/lavacog/internal/discord"
	"github.com/keshon/lavacog/internal/metrics"
	"github.com/keshon/lavacog/internal/middleware"
	"github.com/keshon/lavacog/internal/music/node"
	"github.com/keshon/lavacog/internal/storage"
	"github.com/keshon/lavacog/internal/voice"
	"github.com/keshon/lavacog/pkg/cmd"
	"github.com/keshon/lavacog/pkg/retry"
)

const appName = "lavacog"

var flagEnv = cli.StringFlag{
	Name:       "env",
	Usage:      "dotenv file to load before reading the environment",
	Value:      ".env",
	Persistent: true,
}

var app = cli.Command{
	Name:  appName,
	Usage: "Discord music bot streaming through Lavalink",

	Flags: []cli.Flag{
		&flagEnv,
	},
	Commands: []*cli.Command{
		{
			Name:  "history",
			Usage: "Print the stored command history of a guild",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "guild",
					Usage:    "Guild ID",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "storage",
					Usage: "Datastore file",
					Value: "datastore.json",
				},
			},
			Action: cliHistory,
		},
	},
	Action: cliRun,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("[ERR] %v", err)
	}
}

func cliRun(ctx context.Context, c *cli.Command) error {
	log.Printf("[INFO] Starting %v bot...", appName)

	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return err
	}
	setupLogging(cfg.LogFile)

	store, err := storage.New(ctx, cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	m := metrics.New()
	promReg := prometheus.NewRegistry()
	if err := m.Register(promReg); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	me, err := dg.User("@me")
	if err != nil {
		return fmt.Errorf("failed to fetch bot user: %w", err)
	}

	client, err := node.New(me.ID, node.WithMetrics(m))
	if err != nil {
		return err
	}
	defer client.Close()

	if err := connectNodes(ctx, client, cfg.Nodes()); err != nil {
		return err
	}

	bridges := voice.NewBridges(dg, client, client.Players())
	state := discord.NewState(dg)

	mu := &music.Music{
		Players: client.Players(),
		Link:    bridges,
		Voice:   state,
	}
	client.AddEventHook(mu.TrackHook)

	registry := buildRegistry(mu, store, state, m)
	bot := discord.New(dg, cfg, registry, bridges)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(ctx) })
	if cfg.MetricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, cfg.MetricsAddr, promReg) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("[DONE] Discord bot exited cleanly")
	return nil
}

func buildRegistry(mu *music.Music, store *storage.Storage, state *discord.State, m *metrics.Metrics) *cmd.Registry {
	registry := cmd.NewRegistry()
	cooldowns := middleware.NewCooldowns()
	for _, c := range mu.Commands() {
		command.RegisterCommand(registry, c,
			middleware.WithMetrics(m),
			middleware.WithGuildOnly(),
			cooldowns.Middleware(),
			middleware.WithCommandLogger(store, state),
			music.WithVoiceMembership(mu),
		)
	}
	return registry
}

// connectNodes adds every configured node, retrying while a node is still
// starting up.
func connectNodes(ctx context.Context, client *node.Client, nodes []config.Node) error {
	policy := retry.Default()
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Printf("[WARN] Audio node not reachable (attempt %d): %v. Retrying in %v", attempt, err, wait)
	}
	for _, n := range nodes {
		err := retry.Do(ctx, policy, func(ctx context.Context) error {
			return client.AddNode(ctx, node.Config(n))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func cliHistory(ctx context.Context, c *cli.Command) error {
	store, err := storage.New(ctx, c.String("storage"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	records, err := store.FetchCommandHistory(c.String("guild"))
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s  %-12s #%-16s %s %s\n",
			r.Datetime.Format("2006-01-02 15:04:05"), r.Username, r.ChannelName, r.Command, r.Param)
	}
	return nil
}

func setupLogging(file string) {
	if file == "" {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}))
}
