package dto

import (
	"time"

	"github.com/mkessler/timetrack/internal/models"
)

// CustomerDTO represents a customer in API responses
type CustomerDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Number  string `json:"number"`
	Comment string `json:"comment"`
	Visible bool   `json:"visible"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID               uint64       `json:"id"`
	CustomerID       uint64       `json:"customer_id"`
	Name             string       `json:"name"`
	Color            string       `json:"color"`
	Number           string       `json:"number"`
	Comment          string       `json:"comment"`
	Start            *time.Time   `json:"start"`
	End              *time.Time   `json:"end"`
	GlobalActivities bool         `json:"global_activities"`
	Visible          bool         `json:"visible"`
	Customer         *CustomerDTO `json:"customer,omitempty"`
}

// ActivityDTO represents an activity in API responses
type ActivityDTO struct {
	ID        uint64      `json:"id"`
	ProjectID *uint64     `json:"project_id"`
	Name      string      `json:"name"`
	Color     string      `json:"color"`
	Number    string      `json:"number"`
	Comment   string      `json:"comment"`
	Visible   bool        `json:"visible"`
	Project   *ProjectDTO `json:"project,omitempty"`
}

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Visible bool   `json:"visible"`
}

// ToCustomerDTO converts a Customer model to CustomerDTO
func ToCustomerDTO(customer models.Customer) CustomerDTO {
	return CustomerDTO{
		ID:      customer.ID,
		Name:    customer.Name,
		Color:   customer.Color,
		Number:  customer.Number,
		Comment: customer.Comment,
		Visible: customer.Visible,
	}
}

// ToCustomerDTOs converts a slice of customers
func ToCustomerDTOs(customers []models.Customer) []CustomerDTO {
	dtos := make([]CustomerDTO, len(customers))
	for i, customer := range customers {
		dtos[i] = ToCustomerDTO(customer)
	}
	return dtos
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:               project.ID,
		CustomerID:       project.CustomerID,
		Name:             project.Name,
		Color:            project.Color,
		Number:           project.Number,
		Comment:          project.Comment,
		Start:            project.Start,
		End:              project.End,
		GlobalActivities: project.GlobalActivities,
		Visible:          project.Visible,
	}

	// Include customer if preloaded
	if project.Customer.ID != 0 {
		customer := ToCustomerDTO(project.Customer)
		dto.Customer = &customer
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}

// ToActivityDTO converts an Activity model to ActivityDTO
func ToActivityDTO(activity models.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:        activity.ID,
		ProjectID: activity.ProjectID,
		Name:      activity.Name,
		Color:     activity.Color,
		Number:    activity.Number,
		Comment:   activity.Comment,
		Visible:   activity.Visible,
	}

	// Include project if preloaded
	if activity.Project != nil && activity.Project.ID != 0 {
		project := ToProjectDTO(*activity.Project)
		dto.Project = &project
	}

	return dto
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []models.Activity) []ActivityDTO {
	dtos := make([]ActivityDTO, len(activities))
	for i, activity := range activities {
		dtos[i] = ToActivityDTO(activity)
	}
	return dtos
}

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:      tag.ID,
		Name:    tag.Name,
		Color:   tag.Color,
		Visible: tag.Visible,
	}
}

// ToTagDTOs converts a slice of tags
func ToTagDTOs(tags []models.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, tag := range tags {
		dtos[i] = ToTagDTO(tag)
	}
	return dtos
}
