package models

type AttachmentState string

const (
	AttachmentStateInReview           AttachmentState = "in_review"
	AttachmentStateApproved           AttachmentState = "approved"
	AttachmentStateRejected           AttachmentState = "rejected"
	AttachmentStateRequiresValidation AttachmentState = "requires_validation"
)

func (s AttachmentState) Valid() bool {
	switch s {
	case AttachmentStateInReview, AttachmentStateApproved,
		AttachmentStateRejected, AttachmentStateRequiresValidation:
		return true
	}
	return false
}

type Attachment struct {
	BaseUUIDModel
	RequestID string          `gorm:"type:varchar(64);not null;index"              json:"requestId"`
	FileType  string          `gorm:"type:varchar(64);not null"                    json:"fileType"`
	State     AttachmentState `gorm:"type:varchar(32);not null;default:'in_review'" json:"state"`
}
