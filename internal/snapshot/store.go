package snapshot

import (
	"context"
	"sort"

	"github.com/jonathan/capacity-planner/internal/types"
)

// Store serves a Snapshot through the forecast collaborator interfaces.
// It is read-only after construction and safe for concurrent use; every
// method returns copies.
type Store struct {
	resources   []types.Resource
	assignments []types.Assignment
	tasks       []types.Task

	resourceByID map[string]int
	// project id per schedule id, learned from tasks
	scheduleProject map[string]string
	// project id per (schedule, task)
	taskProject map[string]string
}

// NewStore indexes a snapshot.
func NewStore(snap *Snapshot) *Store {
	s := &Store{
		resources:       append([]types.Resource(nil), snap.Resources...),
		assignments:     append([]types.Assignment(nil), snap.Assignments...),
		tasks:           append([]types.Task(nil), snap.Tasks...),
		resourceByID:    make(map[string]int, len(snap.Resources)),
		scheduleProject: make(map[string]string),
		taskProject:     make(map[string]string, len(snap.Tasks)),
	}
	sort.SliceStable(s.resources, func(i, j int) bool { return s.resources[i].ID < s.resources[j].ID })
	for i, r := range s.resources {
		s.resourceByID[r.ID] = i
	}
	for _, t := range s.tasks {
		if t.ProjectID == "" {
			continue
		}
		s.taskProject[taskKey(t.ScheduleID, t.ID)] = t.ProjectID
		if t.ScheduleID != "" {
			if _, ok := s.scheduleProject[t.ScheduleID]; !ok {
				s.scheduleProject[t.ScheduleID] = t.ProjectID
			}
		}
	}
	return s
}

func taskKey(scheduleID, taskID string) string {
	return scheduleID + "/" + taskID
}

// ProjectOf returns the project an assignment belongs to, from its task or else its schedule.
func (s *Store) ProjectOf(a types.Assignment) string {
	if p, ok := s.taskProject[taskKey(a.ScheduleID, a.TaskID)]; ok {
		return p
	}
	return s.scheduleProject[a.ScheduleID]
}

// ListActiveResources implements forecast.ResourceDirectory.
func (s *Store) ListActiveResources(context.Context) ([]types.Resource, error) {
	out := make([]types.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if r.IsActive {
			out = append(out, copyResource(r))
		}
	}
	return out, nil
}

// GetResource implements forecast.ResourceDirectory.
func (s *Store) GetResource(_ context.Context, id string) (*types.Resource, error) {
	i, ok := s.resourceByID[id]
	if !ok {
		return nil, nil
	}
	r := copyResource(s.resources[i])
	return &r, nil
}

// ListAssignmentsByProject implements forecast.AssignmentSource.
func (s *Store) ListAssignmentsByProject(_ context.Context, projectID string) ([]types.Assignment, error) {
	return s.filter(func(a types.Assignment) bool {
		return projectID == "" || s.ProjectOf(a) == projectID
	}), nil
}

// ListAssignmentsByResource implements forecast.AssignmentSource.
func (s *Store) ListAssignmentsByResource(_ context.Context, resourceID string) ([]types.Assignment, error) {
	return s.filter(func(a types.Assignment) bool { return a.ResourceID == resourceID }), nil
}

// ListAssignmentsBySchedule implements forecast.AssignmentSource.
func (s *Store) ListAssignmentsBySchedule(_ context.Context, scheduleID string) ([]types.Assignment, error) {
	return s.filter(func(a types.Assignment) bool { return a.ScheduleID == scheduleID }), nil
}

func (s *Store) filter(keep func(types.Assignment) bool) []types.Assignment {
	out := make([]types.Assignment, 0)
	for _, a := range s.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// GetTask implements forecast.TaskSource. An empty scheduleID matches any schedule.
func (s *Store) GetTask(_ context.Context, taskID, scheduleID string) (*types.Task, error) {
	for _, t := range s.tasks {
		if t.ID == taskID && (scheduleID == "" || t.ScheduleID == scheduleID) {
			c := copyTask(t)
			return &c, nil
		}
	}
	return nil, nil
}

// GetTasks implements forecast.TaskSource.
func (s *Store) GetTasks(_ context.Context, ids []string) ([]types.Task, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]types.Task, 0, len(ids))
	for _, t := range s.tasks {
		if want[t.ID] {
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func copyResource(r types.Resource) types.Resource {
	r.Skills = append([]string(nil), r.Skills...)
	return r
}

func copyTask(t types.Task) types.Task {
	if t.StartDate != nil {
		d := *t.StartDate
		t.StartDate = &d
	}
	if t.EndDate != nil {
		d := *t.EndDate
		t.EndDate = &d
	}
	return t
}
