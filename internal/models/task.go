package models

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Task is the atomic unit of work. StatusID is required; MilestoneID is
// optional. StartDate/EndDate are epoch seconds and, when both are set,
// StartDate must be strictly before EndDate.
type Task struct {
	ID          uint64   `gorm:"primarykey" json:"id"`
	StatusID    uint64   `gorm:"not null" json:"status_id"`
	MilestoneID *uint64  `json:"milestone_id"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Priority    Priority `gorm:"type:varchar(10);not null;default:'MEDIUM'" json:"priority"`
	StartDate   *int64   `json:"start_date"`
	EndDate     *int64   `json:"end_date"`

	// Relations
	Status      Status           `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Milestone   *Milestone       `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}
