package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyforge/internal/artifact"
)

const artifactColumns = `id, title, outline, characters_json, created_at, updated_at,
    scenes_json, summary, word_count, audio_json, stage_times_json, force_regenerate`

// Create inserts a freshly imported artifact. A missing ID is assigned.
func (s *Store) Create(ctx context.Context, a *artifact.Artifact) error {
	if a == nil {
		return errors.New("nil artifact")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	charactersJSON, err := json.Marshal(a.Characters)
	if err != nil {
		return fmt.Errorf("marshal characters: %w", err)
	}
	scenesJSON, err := nullableJSON(a.Scenes)
	if err != nil {
		return fmt.Errorf("marshal scenes: %w", err)
	}
	audioJSON, err := nullableJSON(a.Audio)
	if err != nil {
		return fmt.Errorf("marshal audio: %w", err)
	}
	stageTimesJSON, err := json.Marshal(a.StageTimes)
	if err != nil {
		return fmt.Errorf("marshal stage times: %w", err)
	}

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO artifacts (
            id, title, outline, characters_json, created_at, updated_at,
            scenes_json, summary, word_count, audio_json, stage_times_json, force_regenerate
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Title,
		a.Outline,
		string(charactersJSON),
		a.CreatedAt.Format(time.RFC3339Nano),
		a.UpdatedAt.Format(time.RFC3339Nano),
		scenesJSON,
		a.Summary,
		a.WordCount,
		audioJSON,
		string(stageTimesJSON),
		boolToInt(a.ForceRegenerate),
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// GetByID returns the artifact with the given ID, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*artifact.Artifact, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+artifactColumns+` FROM artifacts WHERE id = ?`, id)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	return a, nil
}

// List returns all artifacts ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*artifact.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+artifactColumns+` FROM artifacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*artifact.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// ListIDs returns every artifact ID ordered by creation time.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM artifacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list artifact ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan artifact id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveScenes persists the artifact's scene set and derived text fields.
// Stage timestamps ride along so every scene, entity, and image pass lands
// durably before the next stage starts.
func (s *Store) SaveScenes(ctx context.Context, a *artifact.Artifact) error {
	if a == nil || a.ID == "" {
		return errors.New("artifact without id")
	}
	a.UpdatedAt = time.Now().UTC()

	scenesJSON, err := nullableJSON(a.Scenes)
	if err != nil {
		return fmt.Errorf("marshal scenes: %w", err)
	}
	stageTimesJSON, err := json.Marshal(a.StageTimes)
	if err != nil {
		return fmt.Errorf("marshal stage times: %w", err)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE artifacts SET scenes_json = ?, summary = ?, word_count = ?, stage_times_json = ?, updated_at = ? WHERE id = ?`,
		scenesJSON,
		a.Summary,
		a.WordCount,
		string(stageTimesJSON),
		a.UpdatedAt.Format(time.RFC3339Nano),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update scenes: %w", err)
	}
	return requireRow(res, a.ID)
}

// SaveAudio persists the artifact's narration record.
func (s *Store) SaveAudio(ctx context.Context, a *artifact.Artifact) error {
	if a == nil || a.ID == "" {
		return errors.New("artifact without id")
	}
	a.UpdatedAt = time.Now().UTC()

	audioJSON, err := nullableJSON(a.Audio)
	if err != nil {
		return fmt.Errorf("marshal audio: %w", err)
	}
	stageTimesJSON, err := json.Marshal(a.StageTimes)
	if err != nil {
		return fmt.Errorf("marshal stage times: %w", err)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE artifacts SET audio_json = ?, stage_times_json = ?, updated_at = ? WHERE id = ?`,
		audioJSON,
		string(stageTimesJSON),
		a.UpdatedAt.Format(time.RFC3339Nano),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("update audio: %w", err)
	}
	return requireRow(res, a.ID)
}

// SetForceRegenerate flags or clears the full-rebuild request on an artifact.
func (s *Store) SetForceRegenerate(ctx context.Context, id string, force bool) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE artifacts SET force_regenerate = ?, updated_at = ? WHERE id = ?`,
		boolToInt(force),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("set force regenerate: %w", err)
	}
	return requireRow(res, id)
}

// Remove deletes an artifact row. Audio files on disk are left alone.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM artifacts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove artifact: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("artifact %s not found", id)
	}
	return nil
}

func nullableJSON(v any) (any, error) {
	switch value := v.(type) {
	case []artifact.Scene:
		if len(value) == 0 {
			return nil, nil
		}
	case *artifact.Audio:
		if value == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanArtifact(scanner interface{ Scan(dest ...any) error }) (*artifact.Artifact, error) {
	var (
		a              artifact.Artifact
		charactersJSON string
		createdAt      string
		updatedAt      string
		scenesJSON     sql.NullString
		audioJSON      sql.NullString
		stageTimesJSON string
		force          int
	)

	err := scanner.Scan(
		&a.ID,
		&a.Title,
		&a.Outline,
		&charactersJSON,
		&createdAt,
		&updatedAt,
		&scenesJSON,
		&a.Summary,
		&a.WordCount,
		&audioJSON,
		&stageTimesJSON,
		&force,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(charactersJSON), &a.Characters); err != nil {
		return nil, fmt.Errorf("unmarshal characters: %w", err)
	}
	if scenesJSON.Valid && scenesJSON.String != "" {
		if err := json.Unmarshal([]byte(scenesJSON.String), &a.Scenes); err != nil {
			return nil, fmt.Errorf("unmarshal scenes: %w", err)
		}
	}
	if audioJSON.Valid && audioJSON.String != "" {
		a.Audio = &artifact.Audio{}
		if err := json.Unmarshal([]byte(audioJSON.String), a.Audio); err != nil {
			return nil, fmt.Errorf("unmarshal audio: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(stageTimesJSON), &a.StageTimes); err != nil {
		return nil, fmt.Errorf("unmarshal stage times: %w", err)
	}

	if a.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	a.ForceRegenerate = force != 0

	return &a, nil
}
