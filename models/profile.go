package models

// User types shown on the profile.
const (
	UserTypeResident = "resident"
	UserTypeEmployee = "employee"
)

// Profile is the portal account record, distinct from the auth identity.
type Profile struct {
	ID         string  `bson:"id" json:"id"`
	Email      string  `bson:"email" json:"email"`
	FullName   string  `bson:"fullName" json:"fullName"`
	Phone      string  `bson:"phone,omitempty" json:"phone,omitempty"`
	Address    string  `bson:"address,omitempty" json:"address,omitempty"`
	District   string  `bson:"district,omitempty" json:"district,omitempty"`
	Position   string  `bson:"position,omitempty" json:"position,omitempty"`
	Department string  `bson:"department,omitempty" json:"department,omitempty"`
	Language   string  `bson:"language" json:"language"`
	UserType   string  `bson:"userType" json:"userType"`
	Avatar     FileRef `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Timestamps `bson:",inline"`
}

// ProfileUpdateRequest is a partial update; nil fields are left unchanged.
type ProfileUpdateRequest struct {
	FullName   *string `json:"fullName" binding:"omitempty,min=1,max=200"`
	Phone      *string `json:"phone" binding:"omitempty,max=32"`
	Address    *string `json:"address" binding:"omitempty,max=300"`
	District   *string `json:"district" binding:"omitempty,max=100"`
	Position   *string `json:"position" binding:"omitempty,max=100"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Language   *string `json:"language" binding:"omitempty,lang"`
}

// IsEmpty reports whether the request carries no change.
func (r ProfileUpdateRequest) IsEmpty() bool {
	return r.FullName == nil && r.Phone == nil && r.Address == nil && r.District == nil &&
		r.Position == nil && r.Department == nil && r.Language == nil
}
