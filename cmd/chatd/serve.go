// Copyright 2025 Turkmen Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/your-org/turkmen-assistant/internal/auth"
	"github.com/your-org/turkmen-assistant/internal/cache"
	"github.com/your-org/turkmen-assistant/internal/chat"
	"github.com/your-org/turkmen-assistant/internal/config"
	"github.com/your-org/turkmen-assistant/internal/health"
	"github.com/your-org/turkmen-assistant/internal/llm"
	"github.com/your-org/turkmen-assistant/internal/normalizer"
	"github.com/your-org/turkmen-assistant/internal/ranking"
	"github.com/your-org/turkmen-assistant/internal/server"
	"github.com/your-org/turkmen-assistant/internal/store"
	"go.uber.org/zap"
)

// challengeSweepInterval is how often expired challenges are dropped
const challengeSweepInterval = time.Minute

// backingStore is the union of store capabilities one backend provides
type backingStore interface {
	store.DocumentStore
	store.DocumentAdmin
	store.HistoryStore
	store.RoomStore
	Close() error
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger, err := initializeLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("Configuration loaded",
				zap.String("service", "chatd"),
				zap.String("llm_endpoint", cfg.LLM.Endpoint),
				zap.String("model", cfg.LLM.Model),
				zap.String("store_driver", cfg.Store.Driver),
				zap.Int("top_k", cfg.Retrieval.TopK),
				zap.Float64("similarity_threshold", cfg.Retrieval.SimilarityThreshold),
			)

			backing, err := openStore(cfg)
			if err != nil {
				logger.Fatal("Failed to open store", zap.Error(err))
			}
			defer func() {
				if err := backing.Close(); err != nil {
					logger.Warn("Failed to close store", zap.Error(err))
				}
			}()

			llmClient, err := llm.NewClient(llm.Options{
				APIKey:         cfg.LLM.APIKey,
				Endpoint:       cfg.LLM.Endpoint,
				Model:          cfg.LLM.Model,
				EmbeddingModel: cfg.LLM.EmbeddingModel,
				Dimensions:     cfg.LLM.EmbeddingDimensions,
				Timeout:        time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			}, logger)
			if err != nil {
				logger.Fatal("Failed to initialize LLM client", zap.Error(err))
			}

			norm, err := buildNormalizer(cfg)
			if err != nil {
				logger.Fatal("Failed to load corrections", zap.Error(err))
			}

			ranker := ranking.NewRanker(llmClient, cfg.Retrieval.ContentWeight, cfg.Retrieval.TitleWeight, logger)
			chatService := chat.NewService(backing, backing, backing, ranker, llmClient, norm, cfg.Retrieval.TruncationLimit, logger)

			verifier, err := auth.NewStaticVerifier(cfg.Auth.Tokens, logger)
			if err != nil {
				logger.Fatal("Failed to build verifier", zap.Error(err))
			}

			challengeStore := cache.NewStore(cache.SystemClock{}, logger)
			challengeStore.StartSweeper(cmd.Context(), challengeSweepInterval)
			challenges := auth.NewChallenges(challengeStore, time.Duration(cfg.Auth.ChallengeTTLSeconds)*time.Second)

			healthManager := health.NewManager("chatd", "1.0.0", logger)
			healthManager.AddChecker("store", func(ctx context.Context) error {
				_, err := backing.ListSegments(ctx)
				return err
			})

			if cfg.Logging.Level == "debug" {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := server.New(chatService, backing, verifier, challenges, healthManager, logger)
			router := srv.Router()

			logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
			return router.Run(":" + cfg.Server.Port)
		},
	}
}

// openStore picks the configured store backend
func openStore(cfg *config.Config) (backingStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgresStore(cfg.Store.DSN)
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// buildNormalizer loads the correction table when configured
func buildNormalizer(cfg *config.Config) (*normalizer.Normalizer, error) {
	if cfg.Normalizer.CorrectionsPath == "" {
		return normalizer.New(nil), nil
	}
	corrections, err := normalizer.LoadCorrections(cfg.Normalizer.CorrectionsPath)
	if err != nil {
		return nil, err
	}
	return normalizer.New(corrections), nil
}
