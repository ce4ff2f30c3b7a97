package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/classsync/core/assignment"
)

type masterRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Deadline  time.Time `db:"deadline"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

func (r masterRow) toMaster() assignment.Master {
	return assignment.Master{
		ID:        r.ID,
		Title:     r.Title,
		Deadline:  r.Deadline.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
		IsActive:  r.IsActive,
	}
}

type submissionRow struct {
	ID           string      `db:"id"`
	MasterID     string      `db:"master_id"`
	StudentID    string      `db:"student_id"`
	Title        string      `db:"title"`
	Content      string      `db:"content"`
	Status       string      `db:"status"`
	Score        null.Int    `db:"score"`
	TeacherReply null.String `db:"teacher_reply"`
	SubmittedAt  time.Time   `db:"submitted_at"`
	GradedAt     null.Time   `db:"graded_at"`
}

func newSubmissionRow(a assignment.Assignment) submissionRow {
	r := submissionRow{
		ID:           a.ID,
		MasterID:     a.MasterID,
		StudentID:    a.StudentID,
		Title:        a.Title,
		Content:      a.Content,
		Status:       string(a.Status),
		Score:        null.IntFromPtr(a.Score),
		TeacherReply: null.NewString(a.TeacherReply, a.TeacherReply != ""),
		SubmittedAt:  a.SubmittedAt.UTC(),
	}
	if a.GradedAt != nil {
		r.GradedAt = null.TimeFrom(a.GradedAt.UTC())
	}
	return r
}

func (r submissionRow) toAssignment() assignment.Assignment {
	a := assignment.Assignment{
		ID:           r.ID,
		MasterID:     r.MasterID,
		StudentID:    r.StudentID,
		Title:        r.Title,
		Content:      r.Content,
		Status:       assignment.Status(r.Status),
		Score:        r.Score.Ptr(),
		TeacherReply: r.TeacherReply.String,
		SubmittedAt:  r.SubmittedAt.UTC(),
	}
	if r.GradedAt.Valid {
		t := r.GradedAt.Time.UTC()
		a.GradedAt = &t
	}
	return a
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateMaster(ctx context.Context, m assignment.Master) (assignment.Master, error) {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO assignment_masters (id, title, deadline, is_active, created_at) VALUES ($1, $2, $3, $4, $5)",
		m.ID, m.Title, m.Deadline.UTC(), m.IsActive, m.CreatedAt.UTC())
	if err != nil {
		return assignment.Master{}, errors.Wrap(err, "inserting assignment master")
	}
	return m, nil
}

func (repo *assignmentRepository) QueryMasters(ctx context.Context) ([]assignment.Master, error) {
	var rows []masterRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM assignment_masters ORDER BY created_at DESC"); err != nil {
		return nil, errors.Wrap(err, "querying assignment masters")
	}
	masters := make([]assignment.Master, 0, len(rows))
	for _, r := range rows {
		masters = append(masters, r.toMaster())
	}
	return masters, nil
}

func (repo *assignmentRepository) GetMaster(ctx context.Context, id string) (assignment.Master, error) {
	if !validUUID(id) {
		return assignment.Master{}, assignment.ErrMasterNotFound
	}
	var row masterRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM assignment_masters WHERE id = $1", id); err != nil {
		return assignment.Master{}, trapNoRowsErr(err, assignment.ErrMasterNotFound, "getting assignment master")
	}
	return row.toMaster(), nil
}

func (repo *assignmentRepository) UpdateMaster(ctx context.Context, m assignment.Master) (assignment.Master, error) {
	var row masterRow
	err := repo.db.QueryRowxContext(ctx,
		"UPDATE assignment_masters SET title = $2, deadline = $3, is_active = $4 WHERE id = $1 RETURNING *",
		m.ID, m.Title, m.Deadline.UTC(), m.IsActive).StructScan(&row)
	if err != nil {
		return assignment.Master{}, trapNoRowsErr(err, assignment.ErrMasterNotFound, "updating assignment master")
	}
	return row.toMaster(), nil
}

func (repo *assignmentRepository) SaveSubmission(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	if _, err := repo.GetMaster(ctx, a.MasterID); err != nil {
		return assignment.Assignment{}, err
	}
	r := newSubmissionRow(a)
	var row submissionRow
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO assignments (id, master_id, student_id, title, content, status, score, teacher_reply, submitted_at, graded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (master_id, student_id) DO UPDATE SET
			title = EXCLUDED.title, content = EXCLUDED.content, status = EXCLUDED.status, score = EXCLUDED.score,
			teacher_reply = EXCLUDED.teacher_reply, submitted_at = EXCLUDED.submitted_at, graded_at = EXCLUDED.graded_at
		RETURNING *`,
		r.ID, r.MasterID, r.StudentID, r.Title, r.Content, r.Status, r.Score, r.TeacherReply, r.SubmittedAt, r.GradedAt,
	).StructScan(&row)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "saving submission")
	}
	return row.toAssignment(), nil
}

func (repo *assignmentRepository) GetSubmission(ctx context.Context, id string) (assignment.Assignment, error) {
	if !validUUID(id) {
		return assignment.Assignment{}, assignment.ErrSubmissionNotFound
	}
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM assignments WHERE id = $1", id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrSubmissionNotFound, "getting submission")
	}
	return row.toAssignment(), nil
}

func (repo *assignmentRepository) FindSubmission(ctx context.Context, masterID, studentID string) (assignment.Assignment, bool, error) {
	if !validUUID(masterID) {
		return assignment.Assignment{}, false, nil
	}
	var row submissionRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT * FROM assignments WHERE master_id = $1 AND student_id = $2", masterID, studentID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return assignment.Assignment{}, false, nil
	case err != nil:
		return assignment.Assignment{}, false, errors.Wrap(err, "finding submission")
	}
	return row.toAssignment(), true, nil
}

func (repo *assignmentRepository) QuerySubmissions(ctx context.Context, filter assignment.SubmissionFilter) ([]assignment.Assignment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.MasterID != "" {
		if !validUUID(filter.MasterID) {
			return []assignment.Assignment{}, nil
		}
		conds = append(conds, "master_id = ?")
		args = append(args, filter.MasterID)
	}
	q := "SELECT * FROM assignments"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY submitted_at DESC"

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.toAssignment())
	}
	return subs, nil
}

func (repo *assignmentRepository) UpdateSubmission(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	r := newSubmissionRow(a)
	var row submissionRow
	err := repo.db.QueryRowxContext(ctx,
		`UPDATE assignments SET content = $2, status = $3, score = $4, teacher_reply = $5, submitted_at = $6, graded_at = $7
		WHERE id = $1
		RETURNING *`,
		r.ID, r.Content, r.Status, r.Score, r.TeacherReply, r.SubmittedAt, r.GradedAt,
	).StructScan(&row)
	if err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrSubmissionNotFound, "updating submission")
	}
	return row.toAssignment(), nil
}
