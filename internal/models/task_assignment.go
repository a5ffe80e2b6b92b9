package models

type TaskAssignment struct {
	TaskID     uint64 `gorm:"primarykey" json:"task_id"`
	UserID     string `gorm:"primarykey;type:varchar(255)" json:"user_id"`
	AssignedAt int64  `gorm:"autoCreateTime;not null" json:"assigned_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
