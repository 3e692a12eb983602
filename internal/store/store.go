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

// Package store defines the typed persistence boundary for documents, chat
// rooms and chat messages, with Postgres (pgvector) and SQLite backends.
// Every operation is one short-lived unit of work; no connection is held
// across pipeline steps.
package store

import (
	"context"
	"time"
)

// Segment is a stored unit of retrievable knowledge with its precomputed
// content embedding. Immutable once stored.
type Segment struct {
	Title     string
	Content   string
	Embedding []float32
}

// Turn is one message in a room's ordered history
type Turn struct {
	IsUser bool
	Text   string
}

// Room represents a chat room
type Room struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Message represents a persisted chat message with metadata
type Message struct {
	ID        int64     `json:"id"`
	IsUser    bool      `json:"type_user"`
	RoomID    int64     `json:"room_id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomPage is one page of a user's rooms with a has-next marker for
// infinite scroll
type RoomPage struct {
	Rooms   []Room `json:"rooms"`
	HasNext bool   `json:"has_next"`
}

// RoomHistory is the full message history of a room plus room info
type RoomHistory struct {
	Messages []Message `json:"messages"`
	Room     Room      `json:"room_info"`
}

// DocumentStore provides read access to the stored segments
type DocumentStore interface {
	ListSegments(ctx context.Context) ([]Segment, error)
}

// DocumentAdmin supports ingestion of new segments
type DocumentAdmin interface {
	AddSegment(ctx context.Context, seg Segment) error
}

// HistoryStore appends and reads a room's ordered turns
type HistoryStore interface {
	AppendTurn(ctx context.Context, roomID int64, isUser bool, text string) (int64, error)
	ListTurns(ctx context.Context, roomID int64) ([]Turn, error)
}

// RoomStore manages chat rooms and ownership
type RoomStore interface {
	CreateRoom(ctx context.Context, title string, userID int64) (int64, error)
	VerifyOwnership(ctx context.Context, roomID, userID int64) (bool, error)
	ListRooms(ctx context.Context, userID int64, search string, limit, offset int) (RoomPage, error)
	RoomMessages(ctx context.Context, roomID int64) (RoomHistory, error)
	DeleteRoom(ctx context.Context, roomID int64) error
}
