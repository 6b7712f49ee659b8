// Package types provides type definitions for structured data used throughout the capacity planner.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// validate caches struct metadata across calls.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(assignmentRangeValidation, Assignment{})
	return v
}

// Resource is a staffable entity owned by the resource directory.
type Resource struct {
	ID                   string   `json:"id" yaml:"id" validate:"required"`
	Name                 string   `json:"name" yaml:"name" validate:"required"`
	Role                 string   `json:"role" yaml:"role"`
	Skills               []string `json:"skills" yaml:"skills"`
	CapacityHoursPerWeek float64  `json:"capacity_hours_per_week" yaml:"capacity_hours_per_week" validate:"gte=0"`
	IsActive             bool     `json:"is_active" yaml:"is_active"`
}

// Validate checks the resource record.
func (r *Resource) Validate() error {
	return validate.Struct(r)
}

// Assignment binds one resource to one task for an inclusive date range.
type Assignment struct {
	ResourceID   string    `json:"resource_id" yaml:"resource_id" validate:"required"`
	TaskID       string    `json:"task_id" yaml:"task_id" validate:"required"`
	ScheduleID   string    `json:"schedule_id" yaml:"schedule_id" validate:"required"`
	StartDate    time.Time `json:"start_date" yaml:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" yaml:"end_date" validate:"required"`
	HoursPerWeek float64   `json:"hours_per_week" yaml:"hours_per_week" validate:"gte=0"`
}

// Validate checks the assignment record, including that the range is not inverted.
func (a *Assignment) Validate() error {
	return validate.Struct(a)
}

func assignmentRangeValidation(sl validator.StructLevel) {
	a := sl.Current().Interface().(Assignment)
	if !a.StartDate.IsZero() && !a.EndDate.IsZero() && a.EndDate.Before(a.StartDate) {
		sl.ReportError(a.EndDate, "EndDate", "end_date", "gtefield", "StartDate")
	}
}

// Task is the subset of a scheduled task the engine reads.
type Task struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	ScheduleID  string     `json:"schedule_id" yaml:"schedule_id"`
	ProjectID   string     `json:"project_id" yaml:"project_id"`
	Name        string     `json:"name" yaml:"name" validate:"required"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// Validate checks the task record.
func (t *Task) Validate() error {
	return validate.Struct(t)
}

// HasDateRange reports whether both task dates are set.
func (t *Task) HasDateRange() bool {
	return t.StartDate != nil && t.EndDate != nil
}
