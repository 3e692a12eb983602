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

// Package server exposes the assistant over HTTP: the room query endpoint,
// room management and the login challenge surface.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/your-org/turkmen-assistant/internal/auth"
	"github.com/your-org/turkmen-assistant/internal/chat"
	"github.com/your-org/turkmen-assistant/internal/health"
	"github.com/your-org/turkmen-assistant/internal/store"
	"go.uber.org/zap"
)

const identityKey = "identity"

// RoomPromptRequest is the JSON payload of a room query
type RoomPromptRequest struct {
	UserPrompt          string   `json:"user_prompt" binding:"required"`
	RoomID              *int64   `json:"room_id"`
	Temperature         *float64 `json:"temperature"`
	MaxTokens           *int     `json:"max_tokens"`
	TopK                *int     `json:"top_k"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

// Server holds the HTTP layer dependencies
type Server struct {
	chat       *chat.Service
	rooms      store.RoomStore
	verifier   auth.Verifier
	challenges *auth.Challenges
	health     *health.Manager
	logger     *zap.Logger
}

// New creates the HTTP server
func New(
	chatService *chat.Service,
	rooms store.RoomStore,
	verifier auth.Verifier,
	challenges *auth.Challenges,
	healthManager *health.Manager,
	logger *zap.Logger,
) *Server {
	return &Server{
		chat:       chatService,
		rooms:      rooms,
		verifier:   verifier,
		challenges: challenges,
		health:     healthManager,
		logger:     logger,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/health", s.handleHealth)
	router.GET("/api/v1/auth/challenge", s.handleChallenge)
	router.POST("/api/v1/auth/challenge/verify", s.handleChallengeVerify)

	gpt := router.Group("/api/v1/gpt", s.authMiddleware())
	gpt.POST("/room-query", s.handleRoomQuery)
	gpt.GET("/rooms", s.handleListRooms)
	gpt.GET("/room/:id/messages", s.handleRoomMessages)
	gpt.DELETE("/room/:id", s.handleDeleteRoom)

	return router
}

// authMiddleware resolves the bearer token into an identity
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "❌ User not authenticated 🔑"})
			return
		}

		identity, err := s.verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired access token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func (s *Server) identity(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(auth.Identity)
	return identity
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := s.health.Check(c.Request.Context())
	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (s *Server) handleChallenge(c *gin.Context) {
	id, _, err := s.challenges.Issue()
	if err != nil {
		s.logger.Error("Failed to issue challenge", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.Header("X-Challenge-ID", id)
	c.JSON(http.StatusOK, gin.H{"challenge_id": id})
}

func (s *Server) handleChallengeVerify(c *gin.Context) {
	var req struct {
		ChallengeID string `json:"challenge_id" binding:"required"`
		Answer      string `json:"answer" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request format"})
		return
	}

	if !s.challenges.Check(req.ChallengeID, req.Answer) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid or expired challenge"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (s *Server) handleRoomQuery(c *gin.Context) {
	var req RoomPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "⚠️ Empty query submitted ❗"})
		return
	}

	identity := s.identity(c)
	outcome, err := s.chat.Ask(c.Request.Context(), identity.UserID, chat.AskRequest{
		UserPrompt:          req.UserPrompt,
		RoomID:              req.RoomID,
		Temperature:         req.Temperature,
		MaxTokens:           req.MaxTokens,
		TopK:                req.TopK,
		SimilarityThreshold: req.SimilarityThreshold,
	})
	if err != nil {
		s.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// writeChatError maps pipeline errors to HTTP statuses
func (s *Server) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyPrompt):
		c.JSON(http.StatusBadRequest, gin.H{"detail": "⚠️ Empty query submitted ❗"})
	case errors.Is(err, chat.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "❌ User not authenticated 🔑"})
	case errors.Is(err, chat.ErrRoomAccess):
		c.JSON(http.StatusForbidden, gin.H{"detail": "🚫 You do not have access to this room 🔒"})
	case errors.Is(err, chat.ErrRoomCreate):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "❌ Could not create chat room 🏚️"})
	default:
		s.logger.Error("Unexpected pipeline error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}

func (s *Server) handleListRooms(c *gin.Context) {
	identity := s.identity(c)

	search := c.Query("search")
	limit := parseQueryInt(c, "limit", 20, 1, 100)
	offset := parseQueryInt(c, "offset", 0, 0, 1<<30)

	page, err := s.rooms.ListRooms(c.Request.Context(), identity.UserID, search, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list rooms", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) handleRoomMessages(c *gin.Context) {
	identity := s.identity(c)

	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid room id"})
		return
	}

	owned, err := s.rooms.VerifyOwnership(c.Request.Context(), roomID, identity.UserID)
	if err != nil || !owned {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You don't have access to this room"})
		return
	}

	history, err := s.rooms.RoomMessages(c.Request.Context(), roomID)
	if err != nil {
		s.logger.Error("Failed to load room messages",
			zap.Int64("room_id", roomID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, history)
}

func (s *Server) handleDeleteRoom(c *gin.Context) {
	identity := s.identity(c)

	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid room id"})
		return
	}

	owned, err := s.rooms.VerifyOwnership(c.Request.Context(), roomID, identity.UserID)
	if err != nil || !owned {
		c.JSON(http.StatusForbidden, gin.H{"detail": "You don't have access to this room"})
		return
	}

	if err := s.rooms.DeleteRoom(c.Request.Context(), roomID); err != nil {
		s.logger.Error("Failed to delete room",
			zap.Int64("room_id", roomID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Room " + strconv.FormatInt(roomID, 10) + " deleted successfully"})
}

// parseQueryInt reads an integer query parameter bounded to [min, max]
func parseQueryInt(c *gin.Context, name string, fallback, min, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return fallback
	}
	return v
}
