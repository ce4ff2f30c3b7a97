package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/classsync/core/assignment"
)

type assignmentRepository struct {
	db *assignmentTable
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db.assignment}
}

func (repo *assignmentRepository) CreateMaster(_ context.Context, m assignment.Master) (assignment.Master, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.masters[m.ID] = &m
	return m, nil
}

func (repo *assignmentRepository) QueryMasters(context.Context) ([]assignment.Master, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	masters := make([]assignment.Master, 0, len(repo.db.masters))
	for _, m := range repo.db.masters {
		masters = append(masters, *m)
	}
	sort.SliceStable(masters, func(i, j int) bool { return masters[i].CreatedAt.After(masters[j].CreatedAt) })
	return masters, nil
}

func (repo *assignmentRepository) GetMaster(_ context.Context, id string) (assignment.Master, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.masters[id]; ok {
		return *m, nil
	}
	return assignment.Master{}, assignment.ErrMasterNotFound
}

func (repo *assignmentRepository) UpdateMaster(_ context.Context, m assignment.Master) (assignment.Master, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.masters[m.ID]; !ok {
		return assignment.Master{}, assignment.ErrMasterNotFound
	}
	repo.db.masters[m.ID] = &m
	return m, nil
}

func (repo *assignmentRepository) SaveSubmission(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.masters[a.MasterID]; !ok {
		return assignment.Assignment{}, assignment.ErrMasterNotFound
	}
	for id, s := range repo.db.submissions {
		if s.MasterID == a.MasterID && s.StudentID == a.StudentID {
			a.ID = id
		}
	}
	repo.db.submissions[a.ID] = &a
	return a, nil
}

func (repo *assignmentRepository) GetSubmission(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.submissions[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrSubmissionNotFound
}

func (repo *assignmentRepository) FindSubmission(_ context.Context, masterID, studentID string) (assignment.Assignment, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, a := range repo.db.submissions {
		if a.MasterID == masterID && a.StudentID == studentID {
			return *a, true, nil
		}
	}
	return assignment.Assignment{}, false, nil
}

func (repo *assignmentRepository) QuerySubmissions(_ context.Context, filter assignment.SubmissionFilter) ([]assignment.Assignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]assignment.Assignment, 0)
	for _, a := range repo.db.submissions {
		if (filter.StudentID == "" || a.StudentID == filter.StudentID) &&
			(filter.MasterID == "" || a.MasterID == filter.MasterID) {
			subs = append(subs, *a)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
	})
	return subs, nil
}

func (repo *assignmentRepository) UpdateSubmission(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.submissions[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrSubmissionNotFound
	}
	repo.db.submissions[a.ID] = &a
	return a, nil
}
