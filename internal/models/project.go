package models

type Project struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt    int64  `gorm:"autoCreateTime;not null" json:"created_at"`
	StartingDate int64  `gorm:"not null" json:"starting_date"`

	// Relations
	Members    []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Milestones []Milestone     `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
	Statuses   []Status        `gorm:"foreignKey:ProjectID" json:"statuses,omitempty"`
}
