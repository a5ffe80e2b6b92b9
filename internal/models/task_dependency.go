package models

// TaskDependency is one edge of the dependency graph: the dependant task
// depends on the dependency task.
type TaskDependency struct {
	DependencyID uint64 `gorm:"primarykey" json:"dependency_id"`
	DependantID  uint64 `gorm:"primarykey" json:"dependant_id"`

	// Relations
	Dependency Task `gorm:"foreignKey:DependencyID" json:"dependency,omitempty"`
	Dependant  Task `gorm:"foreignKey:DependantID" json:"dependant,omitempty"`
}
