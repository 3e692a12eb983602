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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/your-org/turkmen-assistant/internal/chunker"
	"github.com/your-org/turkmen-assistant/internal/llm"
	"github.com/your-org/turkmen-assistant/internal/store"
	"go.uber.org/zap"
)

// seedDocument is one entry of the seed input file
type seedDocument struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func newSeedCommand() *cobra.Command {
	var (
		inputPath string
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Ingest document segments from a JSON file, embedding their content",
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

			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			var documents []seedDocument
			if err := json.Unmarshal(data, &documents); err != nil {
				return fmt.Errorf("failed to parse input file: %w", err)
			}

			backing, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer func() { _ = backing.Close() }()

			llmClient, err := llm.NewClient(llm.Options{
				APIKey:         cfg.LLM.APIKey,
				Endpoint:       cfg.LLM.Endpoint,
				Model:          cfg.LLM.Model,
				EmbeddingModel: cfg.LLM.EmbeddingModel,
				Dimensions:     cfg.LLM.EmbeddingDimensions,
				Timeout:        time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			}, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize LLM client: %w", err)
			}

			start := time.Now()
			stored := 0
			for _, doc := range documents {
				for _, seg := range segmentDocument(doc, chunkSize) {
					embedding, err := llmClient.EmbedQuery(cmd.Context(), seg.Content)
					if err != nil {
						logger.Error("Failed to embed segment, skipping",
							zap.String("title", seg.Title),
							zap.Error(err),
						)
						continue
					}
					seg.Embedding = embedding

					if err := backing.AddSegment(cmd.Context(), seg); err != nil {
						return fmt.Errorf("failed to store %q: %w", seg.Title, err)
					}
					stored++
				}

				logger.Info("Seeded document", zap.String("title", doc.Title))
			}

			logger.Info("Seeding completed",
				zap.Int("documents", len(documents)),
				zap.Int("segments", stored),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "./documents.json", "path to the JSON documents file")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "split documents into segments of at most this many characters (0 disables)")
	return cmd
}

// segmentDocument turns one input document into storable segments. With
// chunking enabled the content is stripped of markdown and split; multi-chunk
// documents get numbered titles.
func segmentDocument(doc seedDocument, chunkSize int) []store.Segment {
	if chunkSize <= 0 {
		return []store.Segment{{Title: doc.Title, Content: doc.Content}}
	}

	chunks := chunker.Split(chunker.StripMarkdown(doc.Content), chunkSize)
	segments := make([]store.Segment, 0, len(chunks))
	for i, chunk := range chunks {
		title := doc.Title
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (%d)", doc.Title, i+1)
		}
		segments = append(segments, store.Segment{Title: title, Content: chunk})
	}
	return segments
}
