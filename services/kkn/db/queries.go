package db

import (
	"context"
)

type Submission struct {
	Id          int64
	Kind        string
	Username    string
	Title       string
	Ok          bool
	Message     string
	Latitude    float64
	Longitude   float64
	SubmittedAt int64
}

const createSubmission = `
INSERT INTO submissions (kind, username, title, ok, message, latitude, longitude, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateSubmissionParams struct {
	Kind        string
	Username    string
	Title       string
	Ok          bool
	Message     string
	Latitude    float64
	Longitude   float64
	SubmittedAt int64
}

func (q *Queries) CreateSubmission(ctx context.Context, arg CreateSubmissionParams) error {
	_, err := q.db.ExecContext(ctx, createSubmission,
		arg.Kind,
		arg.Username,
		arg.Title,
		arg.Ok,
		arg.Message,
		arg.Latitude,
		arg.Longitude,
		arg.SubmittedAt,
	)
	return err
}

const listSubmissions = `
SELECT id, kind, username, title, ok, message, latitude, longitude, submitted_at
FROM submissions
WHERE username = ?
ORDER BY submitted_at DESC
LIMIT ?
`

type ListSubmissionsParams struct {
	Username string
	Limit    int64
}

func (q *Queries) ListSubmissions(ctx context.Context, arg ListSubmissionsParams) ([]Submission, error) {
	rows, err := q.db.QueryContext(ctx, listSubmissions, arg.Username, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Submission
	for rows.Next() {
		var i Submission
		err := rows.Scan(
			&i.Id,
			&i.Kind,
			&i.Username,
			&i.Title,
			&i.Ok,
			&i.Message,
			&i.Latitude,
			&i.Longitude,
			&i.SubmittedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const lastSubmissionOfKind = `
SELECT id, kind, username, title, ok, message, latitude, longitude, submitted_at
FROM submissions
WHERE username = ? AND kind = ? AND ok = 1
ORDER BY submitted_at DESC
LIMIT 1
`

type LastSubmissionOfKindParams struct {
	Username string
	Kind     string
}

func (q *Queries) LastSubmissionOfKind(ctx context.Context, arg LastSubmissionOfKindParams) (Submission, error) {
	row := q.db.QueryRowContext(ctx, lastSubmissionOfKind, arg.Username, arg.Kind)
	var i Submission
	err := row.Scan(
		&i.Id,
		&i.Kind,
		&i.Username,
		&i.Title,
		&i.Ok,
		&i.Message,
		&i.Latitude,
		&i.Longitude,
		&i.SubmittedAt,
	)
	return i, err
}
