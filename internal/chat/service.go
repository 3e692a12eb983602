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

// Package chat sequences one room query through the full pipeline: input
// validation, room resolution, history fetch, ranking, prompt assembly,
// completion, answer composition, normalization and persistence. Store and
// completion failures degrade the pipeline instead of aborting it; only
// input, access and room-creation failures reach the caller.
package chat

import (
	"context"
	"math"
	"strings"

	"github.com/your-org/turkmen-assistant/internal/answer"
	"github.com/your-org/turkmen-assistant/internal/llm"
	"github.com/your-org/turkmen-assistant/internal/normalizer"
	"github.com/your-org/turkmen-assistant/internal/prompt"
	"github.com/your-org/turkmen-assistant/internal/ranking"
	"github.com/your-org/turkmen-assistant/internal/store"
	"go.uber.org/zap"
)

const (
	// RoomTitleLimit bounds the derived title of an auto-created room
	RoomTitleLimit = 100
	// ExistingRoomTitle is reported when the caller supplied the room
	ExistingRoomTitle = "Existing Room"

	// DefaultTemperature is used when the request omits temperature
	DefaultTemperature = 0.3
	// DefaultMaxTokens is used when the request omits max_tokens
	DefaultMaxTokens = 100
	// DefaultTopK is used when the request omits top_k
	DefaultTopK = 3
	// DefaultSimilarityThreshold is used when the request omits the threshold
	DefaultSimilarityThreshold = 0.3
)

// Ranker scores candidates against a query
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []store.Segment, topK int, threshold float64) ([]ranking.RankedSegment, error)
}

// Completer invokes the completion endpoint
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) llm.CompletionResult
	Model() string
}

// AskRequest is one room query. Nil option fields take the documented
// defaults.
type AskRequest struct {
	UserPrompt          string
	RoomID              *int64
	Temperature         *float64
	MaxTokens           *int
	TopK                *int
	SimilarityThreshold *float64
}

// SegmentView is one ranked segment as surfaced to the caller
type SegmentView struct {
	Index                int     `json:"index"`
	Title                string  `json:"title"`
	Content              string  `json:"content"`
	SimilarityScore      float64 `json:"similarity_score"`
	SimilarityPercentage float64 `json:"similarity_percentage"`
}

// ContextSegment is one ranked segment with truncated content
type ContextSegment struct {
	Title                string  `json:"title"`
	Content              string  `json:"content"`
	Similarity           float64 `json:"similarity"`
	SimilarityPercentage float64 `json:"similarity_percentage"`
}

// Metadata is the raw metadata block of a query outcome
type Metadata struct {
	Model                string  `json:"model"`
	Temperature          float64 `json:"temperature"`
	MaxTokens            int     `json:"max_tokens"`
	SegmentsUsed         int     `json:"segments_used"`
	SimilarityThreshold  float64 `json:"similarity_threshold"`
	TopK                 int     `json:"top_k"`
	NoRelevantData       bool    `json:"no_relevant_data"`
	ChatroomID           int64   `json:"chatroom_id"`
	ChatroomTitle        string  `json:"chatroom_title"`
	UserID               int64   `json:"user_id"`
	DataSource           string  `json:"data_source"`
	ProcessingSuccessful bool    `json:"processing_successful"`
}

// QueryOutcome is the pipeline's final product
type QueryOutcome struct {
	Answer          string           `json:"response"`
	Generated       string           `json:"generated_response"`
	FoundContext    []SegmentView    `json:"found_context"`
	ContextSegments []ContextSegment `json:"context_segments"`
	UsedFallback    bool             `json:"used_fallback"`
	Metadata        Metadata         `json:"metadata"`
}

// Service orchestrates the query pipeline
type Service struct {
	documents       store.DocumentStore
	history         store.HistoryStore
	rooms           store.RoomStore
	ranker          Ranker
	completer       Completer
	normalizer      *normalizer.Normalizer
	truncationLimit int
	logger          *zap.Logger
}

// NewService wires the pipeline dependencies
func NewService(
	documents store.DocumentStore,
	history store.HistoryStore,
	rooms store.RoomStore,
	ranker Ranker,
	completer Completer,
	norm *normalizer.Normalizer,
	truncationLimit int,
	logger *zap.Logger,
) *Service {
	if truncationLimit <= 0 {
		truncationLimit = answer.ContentTruncationLimit
	}
	return &Service{
		documents:       documents,
		history:         history,
		rooms:           rooms,
		ranker:          ranker,
		completer:       completer,
		normalizer:      norm,
		truncationLimit: truncationLimit,
		logger:          logger,
	}
}

// Ask runs one query through the pipeline and returns the outcome. The only
// errors returned are ErrEmptyPrompt, ErrUnauthenticated, ErrRoomAccess and
// ErrRoomCreate; everything else degrades into the outcome's metadata.
func (s *Service) Ask(ctx context.Context, userID int64, req AskRequest) (*QueryOutcome, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	temperature := valueOr(req.Temperature, DefaultTemperature)
	maxTokens := valueOr(req.MaxTokens, DefaultMaxTokens)
	topK := valueOr(req.TopK, DefaultTopK)
	threshold := valueOr(req.SimilarityThreshold, DefaultSimilarityThreshold)

	roomID, roomTitle, err := s.resolveRoom(ctx, req.RoomID, req.UserPrompt, userID)
	if err != nil {
		return nil, err
	}

	// Best effort from here on: the caller always gets an answer.
	if _, err := s.history.AppendTurn(ctx, roomID, true, req.UserPrompt); err != nil {
		s.logger.Error("Could not save user query",
			zap.Int64("room_id", roomID),
			zap.Error(err),
		)
	}

	history, err := s.history.ListTurns(ctx, roomID)
	if err != nil {
		s.logger.Error("Could not fetch previous messages",
			zap.Int64("room_id", roomID),
			zap.Error(err),
		)
		history = nil
	}

	ranked := s.rankSegments(ctx, req.UserPrompt, topK, threshold)

	messages := prompt.Assemble(history, req.UserPrompt, ranked)
	result := s.completer.Complete(ctx, messages, temperature, maxTokens)

	composed := answer.Compose(result, ranked)
	usedFallback := !result.OK() || strings.TrimSpace(result.Text) == ""

	final := s.normalizer.Normalize(composed)

	if _, err := s.history.AppendTurn(ctx, roomID, false, final); err != nil {
		s.logger.Error("Could not save assistant response",
			zap.Int64("room_id", roomID),
			zap.Error(err),
		)
	}

	outcome := &QueryOutcome{
		Answer:       final,
		Generated:    final,
		UsedFallback: usedFallback,
		Metadata: Metadata{
			Model:                s.completer.Model(),
			Temperature:          temperature,
			MaxTokens:            maxTokens,
			SegmentsUsed:         len(ranked),
			SimilarityThreshold:  threshold,
			TopK:                 topK,
			NoRelevantData:       len(ranked) == 0,
			ChatroomID:           roomID,
			ChatroomTitle:        roomTitle,
			UserID:               userID,
			DataSource:           "database_and_general_knowledge",
			ProcessingSuccessful: true,
		},
	}

	for i, seg := range ranked {
		percentage := roundTo(seg.Similarity*100, 1)
		outcome.FoundContext = append(outcome.FoundContext, SegmentView{
			Index:                i + 1,
			Title:                seg.Title,
			Content:              seg.Content,
			SimilarityScore:      roundTo(seg.Similarity, 4),
			SimilarityPercentage: percentage,
		})
		outcome.ContextSegments = append(outcome.ContextSegments, ContextSegment{
			Title:                seg.Title,
			Content:              answer.SmartTruncate(seg.Content, s.truncationLimit),
			Similarity:           seg.Similarity,
			SimilarityPercentage: percentage,
		})
	}

	return outcome, nil
}

// resolveRoom creates a room titled from the query's first 100 characters,
// or verifies ownership of the supplied one. Room creation failure is
// terminal since there is no place to answer into.
func (s *Service) resolveRoom(ctx context.Context, roomID *int64, userPrompt string, userID int64) (int64, string, error) {
	if roomID == nil {
		title := deriveRoomTitle(userPrompt)
		id, err := s.rooms.CreateRoom(ctx, title, userID)
		if err != nil {
			s.logger.Error("Could not create chat room", zap.Error(err))
			return 0, "", ErrRoomCreate
		}
		return id, title, nil
	}

	owned, err := s.rooms.VerifyOwnership(ctx, *roomID, userID)
	if err != nil {
		s.logger.Error("Could not verify room ownership",
			zap.Int64("room_id", *roomID),
			zap.Error(err),
		)
		return 0, "", ErrRoomAccess
	}
	if !owned {
		return 0, "", ErrRoomAccess
	}
	return *roomID, ExistingRoomTitle, nil
}

// rankSegments lists the candidate set and ranks it; any failure degrades to
// an empty result
func (s *Service) rankSegments(ctx context.Context, query string, topK int, threshold float64) []ranking.RankedSegment {
	candidates, err := s.documents.ListSegments(ctx)
	if err != nil {
		s.logger.Error("Could not list document segments", zap.Error(err))
		return nil
	}

	ranked, err := s.ranker.Rank(ctx, query, candidates, topK, threshold)
	if err != nil {
		s.logger.Error("Could not rank segments", zap.Error(err))
		return nil
	}
	return ranked
}

// deriveRoomTitle takes the first 100 characters of the query
func deriveRoomTitle(userPrompt string) string {
	runes := []rune(userPrompt)
	if len(runes) > RoomTitleLimit {
		return string(runes[:RoomTitleLimit])
	}
	return userPrompt
}

func valueOr[T any](v *T, fallback T) T {
	if v != nil {
		return *v
	}
	return fallback
}

// roundTo rounds v to the given number of decimal places
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
