package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink persists audit entries into the external schema the engine
// depends on: games, game_participants, game_rounds, game_actions. The
// engine only ever appends to game_actions, through the Sink interface.
// RecordGameCreated, RecordGameStatus and RecordParticipant write the
// games and game_participants tables but are not called by the session
// layer; nothing in this package writes game_rounds.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens (creating if necessary) a sqlite database at path
// and ensures the external schema exists.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'waiting',
			current_turn_player_id TEXT,
			round_number INTEGER NOT NULL DEFAULT 0,
			time_limit_seconds INTEGER NOT NULL,
			game_deck TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS game_participants (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			hand_cards TEXT,
			penalty_cockroach TEXT DEFAULT '[]',
			penalty_mouse TEXT DEFAULT '[]',
			penalty_bat TEXT DEFAULT '[]',
			penalty_frog TEXT DEFAULT '[]',
			cards_remaining INTEGER NOT NULL DEFAULT 0,
			has_lost BOOLEAN NOT NULL DEFAULT FALSE,
			losing_creature_type TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS game_rounds (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL,
			round_number INTEGER NOT NULL,
			current_card TEXT,
			claiming_player_id TEXT NOT NULL,
			claimed_creature_type TEXT NOT NULL,
			target_player_id TEXT NOT NULL,
			pass_count INTEGER NOT NULL DEFAULT 0,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			final_guesser_id TEXT,
			guess_is_truth BOOLEAN,
			actual_is_truth BOOLEAN,
			penalty_receiver_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS game_actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game_id TEXT NOT NULL,
			round_id TEXT,
			player_id TEXT NOT NULL,
			action_type TEXT NOT NULL,
			action_data TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append implements Sink by inserting one row into game_actions. A failed
// append is returned to the caller, who per the record sink contract
// logs and swallows it rather than rolling back game state.
func (s *SQLiteSink) Append(entry Entry) error {
	data, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("audit: marshal action_data: %w", err)
	}
	var roundID sql.NullString
	if entry.RoundID != "" {
		roundID = sql.NullString{String: entry.RoundID, Valid: true}
	}
	_, err = s.db.Exec(
		`INSERT INTO game_actions (game_id, round_id, player_id, action_type, action_data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.GameID, roundID, entry.PlayerID, string(entry.ActionType), string(data), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: append action: %w", err)
	}
	return nil
}

// RecordGameCreated inserts the games row for a newly created room.
func (s *SQLiteSink) RecordGameCreated(gameID, creatorID string, timeLimitSeconds int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO games (id, creator_id, status, round_number, time_limit_seconds)
		 VALUES (?, ?, 'waiting', 0, ?)`,
		gameID, creatorID, timeLimitSeconds,
	)
	return err
}

// RecordGameStatus updates a game's status, current turn, and round
// number.
func (s *SQLiteSink) RecordGameStatus(gameID, status, currentTurnUserID string, roundNumber int) error {
	_, err := s.db.Exec(
		`UPDATE games SET status = ?, current_turn_player_id = ?, round_number = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, currentTurnUserID, roundNumber, gameID,
	)
	return err
}

// RecordParticipant inserts or updates a game_participants row.
func (s *SQLiteSink) RecordParticipant(id, gameID, playerID string, position int) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO game_participants (id, game_id, player_id, position)
		 VALUES (?, ?, ?, ?)`,
		id, gameID, playerID, position,
	)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
