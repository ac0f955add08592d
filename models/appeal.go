package models

import "time"

// AppealStatus is the lifecycle state of an appeal.
type AppealStatus string

const (
	AppealNew        AppealStatus = "new"
	AppealInProgress AppealStatus = "in_progress"
	AppealResolved   AppealStatus = "resolved"
	AppealRejected   AppealStatus = "rejected"
	AppealClosed     AppealStatus = "closed"
)

var appealTransitions = map[AppealStatus][]AppealStatus{
	AppealNew:        {AppealInProgress, AppealRejected},
	AppealInProgress: {AppealResolved, AppealRejected},
	AppealResolved:   {AppealClosed, AppealInProgress},
	AppealRejected:   {AppealClosed},
}

// CanTransition reports whether an appeal may move from s to next.
func (s AppealStatus) CanTransition(next AppealStatus) bool {
	for _, allowed := range appealTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appeal categories.
const (
	CategoryInfrastructure = "infrastructure"
	CategoryUtilities      = "utilities"
	CategoryTransport      = "transport"
	CategoryEnvironment    = "environment"
	CategorySocial         = "social"
	CategorySafety         = "safety"
	CategoryOther          = "other"
)

// Appeal priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Appeal is a resident-submitted complaint or request.
type Appeal struct {
	ID          string       `bson:"id" json:"id"`
	Number      string       `bson:"number" json:"number"`
	Title       string       `bson:"title" json:"title"`
	Description string       `bson:"description" json:"description"`
	Category    string       `bson:"category" json:"category"`
	Priority    string       `bson:"priority" json:"priority"`
	Status      AppealStatus `bson:"status" json:"status"`
	Address     string       `bson:"address,omitempty" json:"address,omitempty"`
	SubmittedBy string       `bson:"submittedBy" json:"submittedBy"`
	AssignedTo  string       `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	Response    string       `bson:"response,omitempty" json:"response,omitempty"`
	Attachments []string     `bson:"attachments,omitempty" json:"attachments,omitempty"`
	ResolvedAt  *time.Time   `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	Timestamps  `bson:",inline"`
}

// AppealCreateRequest is submitted by residents.
type AppealCreateRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=200"`
	Description string   `json:"description" binding:"required,max=5000"`
	Category    string   `json:"category" binding:"required,oneof=infrastructure utilities transport environment social safety other"`
	Priority    string   `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Address     string   `json:"address" binding:"omitempty,max=300"`
	Attachments []string `json:"attachments" binding:"omitempty,max=10"`
}

// AppealStatusRequest moves an appeal through its workflow.
type AppealStatusRequest struct {
	Status   AppealStatus `json:"status" binding:"required,oneof=new in_progress resolved rejected closed"`
	Response string       `json:"response" binding:"omitempty,max=5000"`
}

// AppealAssignRequest assigns an appeal to an employee.
type AppealAssignRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
}

// AppealFilter narrows appeal listings.
type AppealFilter struct {
	Status      AppealStatus `form:"status"`
	Category    string       `form:"category"`
	Priority    string       `form:"priority"`
	AssignedTo  string       `form:"assignedTo"`
	SubmittedBy string       `form:"-"`
	Search      string       `form:"q"`
	Page
}
