package models

import "time"

// User is the authentication identity. Portal data lives in Profile.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	Devices      []Device  `bson:"devices" json:"devices,omitempty"`
	FCMToken     string    `bson:"fcmToken,omitempty" json:"-"`
	LastSignInAt time.Time `bson:"lastSignInAt,omitempty" json:"lastSignInAt,omitempty"`
	Timestamps   `bson:",inline"`
}

// Device is a signed-in client of a user.
type Device struct {
	DeviceID   string    `bson:"deviceId" json:"deviceId"`
	DeviceName string    `bson:"deviceName" json:"deviceName"`
	IP         string    `bson:"ip" json:"ip"`
	LastLogin  time.Time `bson:"lastLogin" json:"lastLogin"`
	TokenHash  string    `bson:"tokenHash" json:"-"`
}

// SignUpRequest is the public registration payload.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Language string `json:"language" binding:"omitempty,lang"`
}

// SignInRequest is the login payload.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest changes the password of the signed-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// AuthResponse is returned after sign-up and sign-in.
type AuthResponse struct {
	Token   string   `json:"token"`
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
	Roles   []Role   `json:"roles"`
}

// Session bundles everything a client needs to bootstrap in one response.
type Session struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
	Roles   []Role   `json:"roles"`
}
