package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold. Privilege checks derive from this single
// field; there is no separate admin flag.
const (
	RoleRenter    = "renter"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
	RoleOwner     = "owner"
)

// Owner application states, tracked independently of the current role.
const (
	OwnerStatusNone     = "none"
	OwnerStatusPending  = "pending"
	OwnerStatusApproved = "approved"
	OwnerStatusRejected = "rejected"
)

// User represents a marketplace account: renters, moderators, admins and
// approved owners all live in the same collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Picture      string             `bson:"picture,omitempty" json:"picture,omitempty"`
	Role         string             `bson:"role" json:"role"`

	// Balance accumulates booking commissions on owned places, in euros.
	// Only booking credits and withdrawal debits may mutate it.
	Balance float64 `bson:"balance" json:"balance"`

	// Owner application fields, populated by the register-owner flow.
	OwnerStatus        string     `bson:"ownerStatus" json:"ownerStatus"`
	PhoneNumber        string     `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	CompanyName        string     `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Website            string     `bson:"website,omitempty" json:"website,omitempty"`
	Country            string     `bson:"country,omitempty" json:"country,omitempty"`
	City               string     `bson:"city,omitempty" json:"city,omitempty"`
	Address            string     `bson:"address,omitempty" json:"address,omitempty"`
	PostalCode         string     `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
	AccommodationType  string     `bson:"accommodationType,omitempty" json:"accommodationType,omitempty"`
	NumberOfProperties int        `bson:"numberOfProperties,omitempty" json:"numberOfProperties,omitempty"`
	HowDidYouHear      string     `bson:"howDidYouHear,omitempty" json:"howDidYouHear,omitempty"`
	Siret              string     `bson:"siret,omitempty" json:"siret,omitempty"`
	Photos             StringList `bson:"photos,omitempty" json:"photos,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsPrivileged reports whether the user may access moderation endpoints.
func (u User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// UserSummary is the slim identity shape embedded in owner booking responses.
type UserSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
}

// Summary projects the fields booking listings need.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
