package models

type ProjectRole string

const (
	RoleOwner        ProjectRole = "OWNER"
	RoleCollaborator ProjectRole = "COLLABORATOR"
)

// ProjectMember links an identity-provider user to a project. User IDs are
// opaque strings issued by the external provider, never generated locally.
type ProjectMember struct {
	ProjectID uint64      `gorm:"primarykey" json:"project_id"`
	UserID    string      `gorm:"primarykey;type:varchar(255)" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt  int64       `gorm:"autoCreateTime;not null" json:"joined_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
