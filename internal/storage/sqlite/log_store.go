package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/atikulmunna/logreader/internal/model"
)

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SaveLog inserts or replaces a log row.
func (db *DB) SaveLog(l model.Log) error {
	_, err := db.conn.Exec(`
		INSERT INTO logs (id, source, content, uploaded_at, status, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			content = excluded.content,
			status = excluded.status,
			error = excluded.error
	`, l.ID, l.Source, l.Content, l.UploadedAt.UTC().Format(timeFormat), string(l.Status), l.Error)
	if err != nil {
		return fmt.Errorf("save log %s: %w", l.ID, err)
	}
	return nil
}

// SaveAnalysis stores the result for a log, replacing any previous one.
func (db *DB) SaveAnalysis(logID string, res model.AnalysisResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode analysis %s: %w", logID, err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO analyses (log_id, result, generated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(log_id) DO UPDATE SET
			result = excluded.result,
			generated_at = excluded.generated_at
	`, logID, string(raw), res.GeneratedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", logID, err)
	}
	return nil
}

// DeleteAnalysis removes the stored result for a log, if any.
func (db *DB) DeleteAnalysis(logID string) error {
	if _, err := db.conn.Exec(`DELETE FROM analyses WHERE log_id = ?`, logID); err != nil {
		return fmt.Errorf("delete analysis %s: %w", logID, err)
	}
	return nil
}

// DeleteLog removes a log and its analysis.
func (db *DB) DeleteLog(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete log %s: %w", id, err)
	}
	return nil
}

// LoadAll returns every stored log in upload order plus the analyses keyed
// by log ID.
func (db *DB) LoadAll() ([]model.Log, map[string]model.AnalysisResult, error) {
	rows, err := db.conn.Query(`
		SELECT id, source, content, uploaded_at, status, error
		FROM logs
		ORDER BY uploaded_at, rowid
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var logs []model.Log
	for rows.Next() {
		var (
			l          model.Log
			uploadedAt string
			status     string
		)
		if err := rows.Scan(&l.ID, &l.Source, &l.Content, &uploadedAt, &status, &l.Error); err != nil {
			return nil, nil, fmt.Errorf("scan log: %w", err)
		}
		l.UploadedAt, _ = time.Parse(timeFormat, uploadedAt)
		l.Status = model.LogStatus(status)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	results := make(map[string]model.AnalysisResult)
	arows, err := db.conn.Query(`SELECT log_id, result FROM analyses`)
	if err != nil {
		return nil, nil, fmt.Errorf("query analyses: %w", err)
	}
	defer arows.Close()

	for arows.Next() {
		var id, raw string
		if err := arows.Scan(&id, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan analysis: %w", err)
		}
		var res model.AnalysisResult
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, nil, fmt.Errorf("decode analysis %s: %w", id, err)
		}
		results[id] = res
	}
	return logs, results, arows.Err()
}
