package models

type RequestType string

const (
	RequestTypeBillReturn RequestType = "bill-return"
)

type RequestState string

const (
	RequestStateCreated            RequestState = "created"
	RequestStateInReview           RequestState = "in_review"
	RequestStateApproved           RequestState = "approved"
	RequestStateRequiresValidation RequestState = "requires_validation"
	RequestStateNonPaid            RequestState = "non_paid"
	RequestStatePaid               RequestState = "paid"
	RequestStateCompleted          RequestState = "completed"
	RequestStateRejected           RequestState = "rejected"
	RequestStateFrozen             RequestState = "frozen"
	RequestStateCanceled           RequestState = "canceled"
)

func (s RequestState) Valid() bool {
	switch s {
	case RequestStateCreated, RequestStateInReview, RequestStateApproved,
		RequestStateRequiresValidation, RequestStateNonPaid, RequestStatePaid,
		RequestStateCompleted, RequestStateRejected, RequestStateFrozen,
		RequestStateCanceled:
		return true
	}
	return false
}

type Request struct {
	BaseUUIDModel
	RequestType RequestType  `gorm:"type:varchar(32);not null;default:'bill-return'" json:"requestType"`
	State       RequestState `gorm:"type:varchar(32);not null;default:'created'"     json:"state"`
	Active      bool         `gorm:"not null;default:true"                           json:"active"`

	Attachments []Attachment `gorm:"foreignKey:RequestID" json:"attachments,omitempty"`
	Expirations []Expiration `gorm:"foreignKey:RequestID" json:"expirations,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:RequestID" json:"assignments,omitempty"`
}
