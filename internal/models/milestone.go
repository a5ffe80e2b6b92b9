package models

type Milestone struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	ProjectID   uint64 `gorm:"not null" json:"project_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	DueDate     *int64 `json:"due_date"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Tasks   []Task  `gorm:"foreignKey:MilestoneID" json:"tasks,omitempty"`
}
