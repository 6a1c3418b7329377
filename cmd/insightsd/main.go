// cmd/insightsd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"segment-insights/internal/alerting"
	"segment-insights/internal/common/aws"
	"segment-insights/internal/common/config"
	"segment-insights/internal/common/database"
	"segment-insights/internal/common/logger"
	"segment-insights/internal/common/observability"
	"segment-insights/internal/engine/analytics"
	"segment-insights/internal/engine/chat"
	"segment-insights/internal/engine/llm"
	"segment-insights/internal/engine/memory"
	"segment-insights/internal/engine/records"
	"segment-insights/internal/engine/transcript"
	"segment-insights/internal/server"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "insightsd",
		Short:        "Customer segmentation analytics and grounded chat service",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (defaults to configs/config.yaml)")
	root.AddCommand(serveCmd(), askCmd(), digestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// app holds the shared wiring built from configuration.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	engine    *analytics.Engine
	generator llm.Generator
	store     *memory.RedisStore
	indexer   *transcript.Indexer

	pg    *database.PostgresClient
	redis *database.RedisClient
}

func (a *app) close() {
	if a.pg != nil {
		a.pg.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// bootstrap loads the dataset and builds every collaborator the
// configuration enables. Redis and Elasticsearch are optional; the
// generator is optional too and its absence means fallback-only mode.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	a := &app{cfg: cfg, log: log}

	source, err := a.buildSource()
	if err != nil {
		return nil, err
	}

	table, err := source.Fetch(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	set, err := records.NewPreparer(log).Prepare(table)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("prepare records: %w", err)
	}
	a.engine = analytics.New(set)

	if cfg.LLM.BaseURL != "" {
		a.generator = llm.NewHTTPGenerator(&llm.Config{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Timeout:     config.GetDuration(cfg.LLM.Timeout),
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			MaxRetries:  cfg.LLM.MaxRetries,
		}, log)
	} else {
		log.Warn("no generation endpoint configured, serving deterministic answers only", nil)
	}

	if cfg.Database.Redis.Address != "" {
		a.redis, _ = database.NewRedis(cfg.Database.Redis)
		if err := a.redis.Ping(ctx); err != nil {
			log.Warn("redis unreachable, sessions stay in process memory", map[string]interface{}{
				"error": err.Error(),
			})
			a.redis.Close()
			a.redis = nil
		} else {
			ttl := time.Duration(cfg.Chat.SessionTTL) * time.Minute
			a.store = memory.NewRedisStore(a.redis.GetClient(), cfg.Chat.MaxMemoryTurns, ttl)
		}
	}

	if cfg.Database.Elasticsearch.GetURL() != "" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.Warn("elasticsearch client setup failed, transcripts are not audited", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			a.indexer = transcript.NewIndexer(es.Client, cfg.Database.Elasticsearch.Index, log)
		}
	}

	log.Info("engine ready", map[string]interface{}{
		"customers": a.engine.TotalCustomers(),
		"segments":  len(a.engine.Segments()),
		"source":    source.Name(),
	})
	return a, nil
}

func (a *app) buildSource() (records.Source, error) {
	switch a.cfg.Records.Source {
	case "csv":
		return records.NewCSVSource(a.cfg.Records.CSVPath), nil
	case "postgres":
		pg, err := database.NewPostgres(a.cfg.Database.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.pg = pg
		return records.NewPostgresSource(pg.GetDB(), a.cfg.Records.Table), nil
	default:
		return nil, fmt.Errorf("unknown records source %q", a.cfg.Records.Source)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			obs := observability.New(a.cfg.App.Name)
			defer obs.Shutdown()

			srv := &http.Server{
				Addr: a.cfg.Server.Address,
				Handler: server.New(server.Options{
					Config:        a.cfg,
					Engine:        a.engine,
					Generator:     a.generator,
					Store:         a.store,
					Indexer:       a.indexer,
					Observability: obs,
					Logger:        a.log,
				}).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			if a.cfg.Alerting.Enabled {
				digest, err := buildDigest(ctx, a)
				if err != nil {
					return err
				}
				scheduler := cron.New()
				if _, err := scheduler.AddFunc(a.cfg.Alerting.Schedule, func() {
					if err := digest.Run(context.Background(), a.engine); err != nil {
						a.log.Error("scheduled digest failed", map[string]interface{}{
							"error": err.Error(),
						})
					}
				}); err != nil {
					return fmt.Errorf("invalid alerting schedule %q: %w", a.cfg.Alerting.Schedule, err)
				}
				scheduler.Start()
				defer scheduler.Stop()
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("http server listening", map[string]interface{}{
					"address": a.cfg.Server.Address,
				})
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			controller := chat.NewController(chat.Options{
				Engine:         a.engine,
				Generator:      a.generator,
				MaxMemoryTurns: a.cfg.Chat.MaxMemoryTurns,
				SessionID:      sessionID,
				Store:          a.store,
				Indexer:        a.indexer,
				Logger:         a.log,
			})
			if err := controller.RestoreHistory(cmd.Context()); err != nil {
				a.log.Warn("session history restore failed", map[string]interface{}{
					"error": err.Error(),
				})
			}

			result := controller.Respond(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), result.Response)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to continue a stored conversation")
	return cmd
}

func digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Evaluate churn risk and send the alert digest once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			digest, err := buildDigest(cmd.Context(), a)
			if err != nil {
				return err
			}
			return digest.Run(cmd.Context(), a.engine)
		},
	}
}

func buildDigest(ctx context.Context, a *app) (*alerting.Digest, error) {
	var sesClient alerting.SESService
	var snsClient alerting.SNSService

	if a.cfg.Alerting.Email.Enabled {
		client, err := aws.NewSESClient(ctx, a.cfg.Alerting.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		sesClient = client
	}
	if a.cfg.Alerting.SMS.Enabled {
		client, err := aws.NewSNSClient(ctx, a.cfg.Alerting.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		snsClient = client
	}
	return alerting.NewDigest(a.cfg.Alerting, sesClient, snsClient, a.log), nil
}
