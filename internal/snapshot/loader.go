// Package snapshot reads planning data (resources, assignments, tasks) from JSON or YAML
// files and serves it through the forecast collaborator interfaces.
package snapshot

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/capacity-planner/internal/schemas"
	"github.com/jonathan/capacity-planner/internal/types"
	embedded "github.com/jonathan/capacity-planner/schemas"
)

// Snapshot is a point-in-time copy of the collaborator data.
type Snapshot struct {
	Resources   []types.Resource
	Assignments []types.Assignment
	Tasks       []types.Task
}

// file mirrors the on-disk layout. Dates stay strings until parseDate.
type file struct {
	Resources   []fileResource   `yaml:"resources"`
	Assignments []fileAssignment `yaml:"assignments"`
	Tasks       []fileTask       `yaml:"tasks"`
}

// fileResource leaves is_active optional; omitted means active.
type fileResource struct {
	ID                   string   `yaml:"id"`
	Name                 string   `yaml:"name"`
	Role                 string   `yaml:"role"`
	Skills               []string `yaml:"skills"`
	CapacityHoursPerWeek float64  `yaml:"capacity_hours_per_week"`
	IsActive             *bool    `yaml:"is_active"`
}

type fileAssignment struct {
	ResourceID   string  `yaml:"resource_id"`
	TaskID       string  `yaml:"task_id"`
	ScheduleID   string  `yaml:"schedule_id"`
	StartDate    string  `yaml:"start_date"`
	EndDate      string  `yaml:"end_date"`
	HoursPerWeek float64 `yaml:"hours_per_week"`
}

type fileTask struct {
	ID          string `yaml:"id"`
	ScheduleID  string `yaml:"schedule_id"`
	ProjectID   string `yaml:"project_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
}

// dateLayouts are tried in order.
var dateLayouts = []string{types.WeekKeyLayout, time.RFC3339}

// Loader reads snapshot files through an afero.Fs so tests can use a MemMapFs.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader over fs.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// NewOsLoader creates a loader over the real filesystem.
func NewOsLoader() *Loader {
	return NewLoader(afero.NewOsFs())
}

// Load reads, schema-checks and validates a .json, .yaml or .yml snapshot.
func (l *Loader) Load(path string) (*Snapshot, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return nil, &Error{Path: path, Message: "unsupported extension (want .json, .yaml or .yml)"}
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to read", Cause: err}
	}
	return Parse(path, data)
}

// Parse decodes snapshot bytes. JSON is accepted as a subset of YAML. name is only used
// in error messages.
func Parse(name string, data []byte) (*Snapshot, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Path: name, Message: "failed to parse", Cause: err}
	}
	if doc == nil {
		return nil, &Error{Path: name, Message: "empty document"}
	}
	if err := schemas.ValidateDocument(embedded.Snapshot, doc); err != nil {
		return nil, &Error{Path: name, Message: "does not match snapshot schema", Cause: err}
	}

	var raw file
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Path: name, Message: "failed to decode", Cause: err}
	}

	snap, err := raw.convert()
	if err != nil {
		return nil, &Error{Path: name, Message: "invalid record", Cause: err}
	}
	if err := snap.Validate(); err != nil {
		return nil, &Error{Path: name, Message: "invalid record", Cause: err}
	}
	return snap, nil
}

func (f *file) convert() (*Snapshot, error) {
	snap := &Snapshot{
		Resources:   make([]types.Resource, 0, len(f.Resources)),
		Assignments: make([]types.Assignment, 0, len(f.Assignments)),
		Tasks:       make([]types.Task, 0, len(f.Tasks)),
	}

	for _, r := range f.Resources {
		snap.Resources = append(snap.Resources, types.Resource{
			ID:                   r.ID,
			Name:                 r.Name,
			Role:                 r.Role,
			Skills:               r.Skills,
			CapacityHoursPerWeek: r.CapacityHoursPerWeek,
			IsActive:             r.IsActive == nil || *r.IsActive,
		})
	}

	for i, a := range f.Assignments {
		start, err := parseDate(a.StartDate)
		if err != nil {
			return nil, fmt.Errorf("assignments[%d].start_date: %w", i, err)
		}
		end, err := parseDate(a.EndDate)
		if err != nil {
			return nil, fmt.Errorf("assignments[%d].end_date: %w", i, err)
		}
		snap.Assignments = append(snap.Assignments, types.Assignment{
			ResourceID:   a.ResourceID,
			TaskID:       a.TaskID,
			ScheduleID:   a.ScheduleID,
			StartDate:    start,
			EndDate:      end,
			HoursPerWeek: a.HoursPerWeek,
		})
	}

	for i, t := range f.Tasks {
		task := types.Task{
			ID:          t.ID,
			ScheduleID:  t.ScheduleID,
			ProjectID:   t.ProjectID,
			Name:        t.Name,
			Description: t.Description,
		}
		if t.StartDate != "" {
			d, err := parseDate(t.StartDate)
			if err != nil {
				return nil, fmt.Errorf("tasks[%d].start_date: %w", i, err)
			}
			task.StartDate = &d
		}
		if t.EndDate != "" {
			d, err := parseDate(t.EndDate)
			if err != nil {
				return nil, fmt.Errorf("tasks[%d].end_date: %w", i, err)
			}
			task.EndDate = &d
		}
		snap.Tasks = append(snap.Tasks, task)
	}
	return snap, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Validate checks every record and that ids are unique.
func (s *Snapshot) Validate() error {
	resources := make(map[string]bool, len(s.Resources))
	for i := range s.Resources {
		r := &s.Resources[i]
		if err := r.Validate(); err != nil {
			return fmt.Errorf("resources[%d]: %w", i, err)
		}
		if resources[r.ID] {
			return fmt.Errorf("resources[%d]: duplicate id %s", i, r.ID)
		}
		resources[r.ID] = true
	}

	for i := range s.Assignments {
		a := &s.Assignments[i]
		if err := a.Validate(); err != nil {
			return fmt.Errorf("assignments[%d]: %w", i, err)
		}
		if !resources[a.ResourceID] {
			return fmt.Errorf("assignments[%d]: unknown resource %s", i, a.ResourceID)
		}
	}

	tasks := make(map[string]bool, len(s.Tasks))
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tasks[%d]: %w", i, err)
		}
		key := t.ScheduleID + "/" + t.ID
		if tasks[key] {
			return fmt.Errorf("tasks[%d]: duplicate id %s in schedule %q", i, t.ID, t.ScheduleID)
		}
		tasks[key] = true
	}
	return nil
}
