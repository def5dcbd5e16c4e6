package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"career-chat/cmd/api/dto"
	"career-chat/cmd/api/generator"
	"career-chat/cmd/api/httpclient"
	"career-chat/cmd/api/router"
	"career-chat/cmd/api/services"
	"career-chat/cmd/internal/logger"
	"career-chat/config"
	"career-chat/models"
	"career-chat/repositories"
)

var basePathFlag string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "career-chat",
		Short: "Career guidance chat relay backed by Gemini",
		Long: `career-chat stores per-session chat transcripts and relays them to
Gemini to produce career and learning guidance.

Examples:
  career-chat                         Start the HTTP server (same as "serve")
  career-chat migrate                 Create the message store schema and exit
  career-chat history --session abc   Print a session transcript
  career-chat history --session abc --delete`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&basePathFlag, "config-dir", "", "directory containing config.yaml and .env (default: search upwards from cwd)")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newHistoryCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the message store schema if absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, err := repositories.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())
			logStoreOpened(cfg.Storage)
			logger.Log.Infof("schema ensured driver=%s", cfg.Storage.Driver)
			return nil
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var (
		sessionFlag string
		deleteFlag  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print or delete a session transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, err := repositories.Open(cmd.Context(), cfg.Storage)
			if err != nil {
				return err
			}
			defer repo.Close(context.Background())

			// 읽기/삭제만 하므로 생성기는 연결하지 않는다.
			svc := services.NewChatService(repo, generator.New(cfg.Gemini, nil))
			return runHistory(cmd.Context(), cmd.OutOrStdout(), svc, models.SessionID(sessionFlag), deleteFlag)
		},
	}
	cmd.Flags().StringVarP(&sessionFlag, "session", "s", "", "session id (required)")
	cmd.Flags().BoolVar(&deleteFlag, "delete", false, "delete the transcript instead of printing it")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}

func runHistory(ctx context.Context, out io.Writer, svc *services.ChatService, sessionID models.SessionID, del bool) error {
	if del {
		n, chatErr := svc.DeleteHistory(ctx, sessionID)
		if chatErr != nil {
			return chatErr
		}
		_, err := fmt.Fprintf(out, "deleted %d messages from session %s\n", n, sessionID)
		return err
	}

	exists, chatErr := svc.SessionExists(ctx, sessionID)
	if chatErr != nil {
		return chatErr
	}
	if !exists {
		_, err := fmt.Fprintf(out, "unknown session %s\n", sessionID)
		return err
	}

	msgs, chatErr := svc.ListMessages(ctx, sessionID)
	if chatErr != nil {
		return chatErr
	}
	enc := json.NewEncoder(out)
	for _, m := range msgs {
		if err := enc.Encode(dto.NewChatMessageDTO(m)); err != nil {
			return err
		}
	}
	return nil
}

func logStoreOpened(cfg config.StorageConfig) {
	switch cfg.Driver {
	case "mongo":
		logger.Log.Infof("MongoDB connected and indexes ensured db=%s", cfg.MongoDBName)
	default:
		logger.Log.Infof("SQLite opened path=%s", cfg.SQLitePath)
	}
}

func loadConfig() (*config.AppConfig, error) {
	base := basePathFlag
	if base == "" {
		base = config.GetBasePath()
	}
	cfg, err := config.Load(base)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Logging.Level)
	return cfg, nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repositories.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open message store: %w", err)
	}
	defer repo.Close(context.Background())
	logStoreOpened(cfg.Storage)

	gen, err := generator.NewFromConfig(ctx, cfg.Gemini, httpclient.New(httpclient.Config{}))
	if err != nil {
		logger.Log.Errorf("gemini client init failed, continuing without model: %v", err)
		gen = generator.New(cfg.Gemini, nil)
	}
	if !gen.Configured() {
		logger.Log.Warn("Gemini backend not configured (GOOGLE_API_KEY missing or client init failed); replies will carry the configuration error text")
	}

	chatSvc := services.NewChatService(repo, gen, services.WithOrphanCompensation(cfg.Chat.CompensateOrphans))
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.New(cfg, chatSvc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Infof("listening addr=%s storage=%s model=%s", srv.Addr, cfg.Storage.Driver, cfg.Gemini.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
