package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-analytics/core"
)

// Account-level roles. Course roles (teacher, TA, student...) live on enrollments, see account.Role.
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"
)

var (
	AdminRoles = []string{RoleAdmin, RoleAdminOwner, RoleAdminPrincipal}
	AllRoles   = AdminRoles

	rolePriorities = map[string]int{
		RoleAdminOwner:     30,
		RoleAdminPrincipal: 29,
		RoleAdmin:          21,
	}

	roleCapabilities = map[string]Capabilities{
		RoleAdminOwner:     CapReadCourses | CapBypassOverrides,
		RoleAdminPrincipal: CapReadCourses | CapBypassOverrides,
		RoleAdmin:          CapReadCourses,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

// Capabilities is the set of account-administration powers a user holds regardless of enrollments.
// They only apply to the courses of the user's AccountID.
type Capabilities uint8

const (
	// CapReadCourses lets an admin read any course of the account without being enrolled.
	CapReadCourses Capabilities = 1 << iota
	// CapBypassOverrides lets an admin skip the per-role permission overrides.
	CapBypassOverrides
)

func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	AccountID    int       `json:"account_id,omitempty"` // account the admin roles apply to
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

// Capabilities derives the admin capability set from the user's account roles.
func (u *User) Capabilities() Capabilities {
	return CapabilitiesOf(u.Roles)
}

// CapabilitiesOf is used where only the role names are at hand (eg. JWT claims).
func CapabilitiesOf(roles []string) Capabilities {
	var caps Capabilities
	for _, role := range roles {
		caps |= roleCapabilities[role]
	}
	return caps
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"omitempty,min=3,alphanum_"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Username, nu.Email)
}

// GetFilter selects a single user; the first non-zero field wins.
type GetFilter struct {
	ID              int
	UsernameOrEmail string
}
