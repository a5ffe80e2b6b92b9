package models

// InvitationCode grants COLLABORATOR membership in a project. The code
// string itself is the primary key. RedeemLimit is nil for unlimited
// redemptions; expired rows are purged lazily by the project service.
type InvitationCode struct {
	InvitationCode string `gorm:"primarykey;type:varchar(50)" json:"invitation_code"`
	ProjectID      uint64 `gorm:"not null" json:"project_id"`
	CreatedAt      int64  `gorm:"autoCreateTime;not null" json:"created_at"`
	ExpiredAt      int64  `gorm:"not null" json:"expired_at"`
	RedeemLimit    *int   `json:"redeem_limit"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
