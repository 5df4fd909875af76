package domain

import (
	"context"
	"slices"
	"time"
)

// Permission names an action a group may perform.
type Permission string

const (
	PermAddPost       Permission = "add_post"
	PermEditPost      Permission = "edit_post"
	PermEditOwnPost   Permission = "edit_own_post"
	PermDeletePost    Permission = "delete_post"
	PermDeleteOwnPost Permission = "delete_own_post"
	PermLikePost      Permission = "like_post"
	PermAddUser       Permission = "add_user"
	PermEditUser      Permission = "edit_user"
	PermDeleteUser    Permission = "delete_user"
	PermAddGroup      Permission = "add_group"
	PermEditGroup     Permission = "edit_group"
	PermDeleteGroup   Permission = "delete_group"
)

// Default groups created on first start.
const (
	GroupAdmin  = "Admin"
	GroupMember = "Member"
)

// AdminPermissions is the permission set of the seeded Admin group.
var AdminPermissions = []Permission{
	PermEditPost, PermDeletePost, PermAddUser, PermEditUser, PermDeleteUser,
	PermAddGroup, PermEditGroup, PermDeleteGroup, PermLikePost, PermAddPost,
	PermEditOwnPost, PermDeleteOwnPost,
}

// MemberPermissions is the permission set of the seeded Member group.
var MemberPermissions = []Permission{PermAddPost, PermEditOwnPost, PermDeleteOwnPost, PermLikePost}

// Group is a named permission set.
// swagger:model Group
type Group struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// Can reports whether the group grants p.
func (g *Group) Can(p Permission) bool {
	return g != nil && slices.Contains(g.Permissions, p)
}

// User represents a registered user
// swagger:model User
type User struct {
	ID             int64     `json:"id"`
	Login          string    `json:"login"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	HashedPassword string    `json:"-"`
	Salt           string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	GroupID        int64     `json:"-"`
	Group          *Group    `json:"group,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
}

// Can reports whether the user's group grants p.
func (u *User) Can(p Permission) bool {
	return u != nil && u.Group.Can(p)
}

// CanModify reports whether the user may act on something owned by ownerID, given the
// permission for everyone's content (all) and for the user's own content (own).
func (u *User) CanModify(ownerID int64, all, own Permission) bool {
	if u == nil {
		return false
	}
	if u.Can(all) {
		return true
	}
	return u.ID == ownerID && u.Can(own)
}

// PostOwner is the public projection of a user embedded in posts and comments.
type PostOwner struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name,omitempty"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, login string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID int64, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// GroupRepository defines the interface for group storage
type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	GetByName(ctx context.Context, name string) (*Group, error)
	List(ctx context.Context, p PaginationParams) ([]*Group, error)
	Count(ctx context.Context) (int, error)
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Login    string
	Email    string
	Password string
	FullName string
}

// UserService defines the business logic for accounts, groups and authentication.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*User, error)
	Login(ctx context.Context, loginOrEmail, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id int64) (*User, error)
	CreateGroup(ctx context.Context, name string, perms []Permission) (*Group, error)
	ListGroups(ctx context.Context, p PaginationParams) ([]*Group, error)
	// Seed creates the default groups and an admin account when no group exists yet.
	Seed(ctx context.Context, adminPassword string) error
}
