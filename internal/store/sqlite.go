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

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the store interfaces on SQLite for local and test
// runs. Embeddings are stored as JSON-encoded float arrays.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and ensures the schema
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chatroom (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			user_id INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS chatmessage (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type_user BOOLEAN NOT NULL,
			room_id INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ListSegments returns every stored document segment with its embedding
func (s *SQLiteStore) ListSegments(ctx context.Context) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT title, content, embedding FROM documents")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		var encoded string
		if err := rows.Scan(&seg.Title, &seg.Content, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &seg.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding for %q: %w", seg.Title, err)
		}
		segments = append(segments, seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return segments, nil
}

// AddSegment inserts a document segment with its embedding
func (s *SQLiteStore) AddSegment(ctx context.Context, seg Segment) error {
	encoded, err := json.Marshal(seg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (title, content, embedding) VALUES (?, ?, ?)",
		seg.Title, seg.Content, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// AppendTurn appends one turn to a room's history and returns its id
func (s *SQLiteStore) AppendTurn(ctx context.Context, roomID int64, isUser bool, text string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO chatmessage (type_user, room_id, prompt) VALUES (?, ?, ?)",
		isUser, roomID, text,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read message id: %w", err)
	}
	return id, nil
}

// ListTurns returns a room's turns in creation order
func (s *SQLiteStore) ListTurns(ctx context.Context, roomID int64) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT type_user, prompt FROM chatmessage WHERE room_id = ? ORDER BY id ASC",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.IsUser, &t.Text); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return turns, nil
}

// CreateRoom creates a chat room and returns its id
func (s *SQLiteStore) CreateRoom(ctx context.Context, title string, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO chatroom (title, user_id) VALUES (?, ?)",
		title, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert room: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read room id: %w", err)
	}
	return id, nil
}

// VerifyOwnership reports whether the room exists and belongs to the user
func (s *SQLiteStore) VerifyOwnership(ctx context.Context, roomID, userID int64) (bool, error) {
	var owner int64
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM chatroom WHERE id = ?", roomID,
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query room owner: %w", err)
	}
	return owner == userID, nil
}

// ListRooms returns one page of the user's rooms, newest first, with an
// optional title search
func (s *SQLiteStore) ListRooms(ctx context.Context, userID int64, search string, limit, offset int) (RoomPage, error) {
	query := "SELECT id, title, user_id, created_at FROM chatroom WHERE user_id = ?"
	args := []interface{}{userID}

	if search != "" {
		query += " AND title LIKE ?"
		args = append(args, "%"+search+"%")
	}

	// Fetch one extra row to detect whether a next page exists
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit+1, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return RoomPage{}, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Title, &r.UserID, &r.CreatedAt); err != nil {
			return RoomPage{}, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return RoomPage{}, fmt.Errorf("error iterating rooms: %w", err)
	}

	page := RoomPage{Rooms: rooms, HasNext: len(rooms) > limit}
	if page.HasNext {
		page.Rooms = page.Rooms[:limit]
	}
	return page, nil
}

// RoomMessages returns the full history of a room joined with room info
func (s *SQLiteStore) RoomMessages(ctx context.Context, roomID int64) (RoomHistory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cm.id, cm.type_user, cm.room_id, cm.prompt, cm.created_at,
		        cr.title, cr.user_id
		 FROM chatmessage cm
		 JOIN chatroom cr ON cm.room_id = cr.id
		 WHERE cm.room_id = ?
		 ORDER BY cm.created_at ASC, cm.id ASC`,
		roomID,
	)
	if err != nil {
		return RoomHistory{}, fmt.Errorf("failed to query room messages: %w", err)
	}
	defer rows.Close()

	var history RoomHistory
	for rows.Next() {
		var m Message
		var title string
		var ownerID int64
		if err := rows.Scan(&m.ID, &m.IsUser, &m.RoomID, &m.Prompt, &m.CreatedAt, &title, &ownerID); err != nil {
			return RoomHistory{}, fmt.Errorf("failed to scan room message: %w", err)
		}
		history.Messages = append(history.Messages, m)
		if history.Room.ID == 0 {
			history.Room = Room{ID: m.RoomID, Title: title, UserID: ownerID}
		}
	}

	if err := rows.Err(); err != nil {
		return RoomHistory{}, fmt.Errorf("error iterating room messages: %w", err)
	}

	return history, nil
}

// DeleteRoom removes a room and its messages
func (s *SQLiteStore) DeleteRoom(ctx context.Context, roomID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chatmessage WHERE room_id = ?", roomID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chatroom WHERE id = ?", roomID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete room: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}
