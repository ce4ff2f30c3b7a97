package assignment

import "time"

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusGraded    Status = "graded"
)

// Master is an assignment posted by a teacher; students answer it with submissions.
type Master struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Deadline  time.Time `json:"deadline"`   // UTC
	CreatedAt time.Time `json:"created_at"` // UTC
	IsActive  bool      `json:"is_active"`
}

// Assignment is a student's submission to a Master.
type Assignment struct {
	ID           string     `json:"id"`
	MasterID     string     `json:"master_id"`
	StudentID    string     `json:"student_id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Status       Status     `json:"status"`
	Score        *int       `json:"score,omitempty"`
	TeacherReply string     `json:"teacher_reply,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`        // UTC
	GradedAt     *time.Time `json:"graded_at,omitempty"` // UTC
}

type NewMaster struct {
	Title    string    `json:"title" validate:"required,notblank,max=255"`
	Deadline time.Time `json:"deadline" validate:"required"`
}

type UpdateMaster struct {
	Title    *string    `json:"title" validate:"omitempty,notblank,max=255"`
	Deadline *time.Time `json:"deadline"`
	IsActive *bool      `json:"is_active"`
}

type NewSubmission struct {
	Content string `json:"content" validate:"required,notblank"`
}

type Grade struct {
	Score *int `json:"score" validate:"required,min=0,max=100"`
}

type Reply struct {
	Reply string `json:"reply" validate:"required,notblank"`
}

type SubmissionFilter struct {
	StudentID string `query:"student_id"`
	MasterID  string `query:"master_id"`
}
