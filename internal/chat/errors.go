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

package chat

import "errors"

var (
	// ErrEmptyPrompt is returned for a blank user query
	ErrEmptyPrompt = errors.New("empty query submitted")
	// ErrUnauthenticated is returned when no authenticated identity is present
	ErrUnauthenticated = errors.New("user not authenticated")
	// ErrRoomAccess is returned when the caller does not own the room
	ErrRoomAccess = errors.New("no access to this room")
	// ErrRoomCreate is returned when a new room could not be created
	ErrRoomCreate = errors.New("could not create chat room")
)
