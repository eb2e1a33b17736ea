package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Avatar references the user's profile image in the media store.
type Avatar struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url"       json:"url"`
}

// DefaultAvatar is assigned to every new account.
var DefaultAvatar = Avatar{
	PublicID: "Avatars/39c706fdb9f87f1ac86185aca6892cf3_pdmu7r",
	URL:      "https://res.cloudinary.com/geralt500/image/upload/v1660040588/Avatars/39c706fdb9f87f1ac86185aca6892cf3_pdmu7r.jpg",
}

// User represents a storefront account.
// PasswordHash and the reset fields are never serialized to JSON.
type User struct {
	ID                  bson.ObjectID `bson:"_id,omitempty"                   json:"_id"`
	Name                string        `bson:"name"                            json:"name"`
	Email               string        `bson:"email"                           json:"email"`
	PasswordHash        string        `bson:"password,omitempty"              json:"-"`
	Role                Role          `bson:"role"                            json:"role"`
	Avatar              Avatar        `bson:"avatar"                          json:"avatar"`
	ResetPasswordToken  string        `bson:"reset_password_token,omitempty"  json:"-"`
	ResetPasswordExpire *time.Time    `bson:"reset_password_expire,omitempty" json:"-"`
	CreatedAt           time.Time     `bson:"created_at"                      json:"createdAt"`
	UpdatedAt           time.Time     `bson:"updated_at"                      json:"updatedAt"`
}

