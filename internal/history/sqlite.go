package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteStore keeps all agent logs in one SQLite database. Same
// contract as FileStore: a full log is replaced on every save.
type SQLiteStore struct {
	conn *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, err
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, err
	}

	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, agentID, systemPrompt string) ([]Message, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT role, content, call_id, invocation FROM messages WHERE agent_id = ? ORDER BY seq`,
		agentID)
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", agentID, err)
	}
	defer rows.Close()

	var log []Message
	for rows.Next() {
		var m Message
		var callID, invocation sql.NullString
		if err := rows.Scan(&m.Role, &m.Content, &callID, &invocation); err != nil {
			return nil, err
		}
		m.CallID = callID.String
		if invocation.Valid && invocation.String != "" {
			var inv Invocation
			if err := json.Unmarshal([]byte(invocation.String), &inv); err != nil {
				return nil, fmt.Errorf("parsing invocation metadata for %s: %w", agentID, err)
			}
			m.Invocation = &inv
		}
		log = append(log, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(log) == 0 {
		return s.Reset(ctx, agentID, systemPrompt)
	}
	return log, nil
}

func (s *SQLiteStore) Save(ctx context.Context, agentID string, log []Message) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE agent_id = ?`, agentID); err != nil {
		return err
	}
	for seq, m := range log {
		var invocation sql.NullString
		if m.Invocation != nil {
			data, err := json.Marshal(m.Invocation)
			if err != nil {
				return err
			}
			invocation = sql.NullString{String: string(data), Valid: true}
		}
		callID := sql.NullString{String: m.CallID, Valid: m.CallID != ""}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (agent_id, seq, role, content, call_id, invocation) VALUES (?, ?, ?, ?, ?, ?)`,
			agentID, seq, m.Role, m.Content, callID, invocation); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Reset(ctx context.Context, agentID, systemPrompt string) ([]Message, error) {
	log := Seed(systemPrompt)
	if err := s.Save(ctx, agentID, log); err != nil {
		return nil, err
	}
	return log, nil
}
