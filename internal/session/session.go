// Package session resolves the acting staff member for a terminal: the fixed
// role passwords, email login against staff_users and the cached 24h session.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/database"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRole         = errors.New("invalid role")
	ErrRemoteNotConfigured = errors.New("email login requires the remote store")
	ErrNoSession           = errors.New("no active session")
)

// Fixed identities of the two built-in accounts. Orders created under quick
// login reference these ids.
var (
	AdminID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	CashierID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

const (
	AdminEmail   = "admin@gloriapos.com"
	CashierEmail = "cashier@gloriapos.com"
)

// Staff is the authenticated operator.
type Staff struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Staff) IsAdmin() bool         { return s.Role == enum.StaffRoleAdmin }
func (s Staff) CanManageMenu() bool   { return s.IsAdmin() }
func (s Staff) CanViewReports() bool  { return s.IsAdmin() }
func (s Staff) CanDeleteOrders() bool { return s.IsAdmin() }

// Passwords are the quick-login secrets per role.
type Passwords struct {
	Admin   string
	Cashier string
}

// DemoStaff returns the built-in accounts, admin first.
func DemoStaff() []Staff {
	return []Staff{
		{ID: AdminID, Email: AdminEmail, Role: enum.StaffRoleAdmin},
		{ID: CashierID, Email: CashierEmail, Role: enum.StaffRoleCashier},
	}
}

// StaffStore defines the DB methods needed for email login.
// Satisfied by *database.Queries.
type StaffStore interface {
	GetStaffUserByEmail(ctx context.Context, email string) (database.StaffUser, error)
}

// Authenticator checks credentials. store may be nil in local-only mode.
type Authenticator struct {
	passwords Passwords
	store     StaffStore
	now       func() time.Time
}

func NewAuthenticator(passwords Passwords, store StaffStore) *Authenticator {
	return &Authenticator{passwords: passwords, store: store, now: time.Now}
}

// QuickLogin signs in as one of the built-in accounts.
func (a *Authenticator) QuickLogin(role, password string) (Staff, error) {
	var want string
	var staff Staff
	switch role {
	case enum.StaffRoleAdmin:
		want, staff = a.passwords.Admin, DemoStaff()[0]
	case enum.StaffRoleCashier:
		want, staff = a.passwords.Cashier, DemoStaff()[1]
	default:
		return Staff{}, ErrInvalidRole
	}
	if want == "" || subtle.ConstantTimeCompare([]byte(password), []byte(want)) != 1 {
		return Staff{}, ErrInvalidCredentials
	}
	staff.CreatedAt = a.now()
	return staff, nil
}

// Login checks an email and password against staff_users.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Staff, error) {
	if a.store == nil {
		return Staff{}, ErrRemoteNotConfigured
	}
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := a.store.GetStaffUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Staff{}, ErrInvalidCredentials
		}
		return Staff{}, fmt.Errorf("get staff user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Staff{}, ErrInvalidCredentials
	}
	if !enum.IsValidRole(user.Role) {
		return Staff{}, ErrInvalidRole
	}
	return Staff{ID: user.ID, Email: user.Email, Role: user.Role, CreatedAt: user.CreatedAt}, nil
}

// HashPassword hashes a staff password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
