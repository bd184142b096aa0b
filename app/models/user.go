package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_RECRUITER  = "recruiter"
	ROLE_CANDIDATE  = "candidate"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

// DefaultStartingCredits is granted once when an account is created.
// Overridable via STARTING_CREDITS.
const DefaultStartingCredits = 3

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Name             string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email            string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password         string         `gorm:"type:text" json:"-"`
	Role             string         `gorm:"type:varchar(50);default:'recruiter'" json:"role" validate:"oneof=recruiter candidate admin"`
	Status           string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Credits          int64          `gorm:"not null;check:chk_users_credits_non_negative,credits >= 0" json:"credits"`
	Company          string         `gorm:"type:varchar(200);default:null" json:"company" validate:"max=200"`
	AvatarURL        string         `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`
	OAuthProvider    string         `gorm:"type:varchar(50);default:null" json:"-"`
	ActivationToken  string         `gorm:"type:varchar(100);index" json:"-"`
	ActivationSentAt *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	ResetToken       string         `gorm:"type:varchar(100);index" json:"-"`
	ResetSentAt      *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt      *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a password-based user with the starting credit balance.
func CreateUser(username string, email string, password string, startingCredits int64) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     username,
		Email:    email,
		Password: pw,
		Role:     ROLE_RECRUITER,
		Status:   STATUS_INACTIVE,
		Credits:  startingCredits,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

// CreateOAuthUser builds a user from an external identity. OAuth users have
// no local password and are active immediately (the provider verified the
// email).
func CreateOAuthUser(name string, email string, provider string, avatarURL string, startingCredits int64) (*User, error) {
	u := &User{
		Name:          name,
		Email:         email,
		Role:          ROLE_RECRUITER,
		Status:        STATUS_ACTIVE,
		Credits:       startingCredits,
		OAuthProvider: provider,
		AvatarURL:     avatarURL,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// GenerateActivationToken creates a random token and sets ActivationSentAt
func (u *User) GenerateActivationToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ActivationToken = hex.EncodeToString(b)
	now := time.Now()
	u.ActivationSentAt = &now
	return nil
}

// ResetTokenTTL is how long a password reset link stays usable.
const ResetTokenTTL = 2 * time.Hour

// GenerateResetToken creates a random password reset token and stamps when
// it was issued.
func (u *User) GenerateResetToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	u.ResetToken = hex.EncodeToString(b)
	now := time.Now()
	u.ResetSentAt = &now
	return nil
}

// IsResetTokenExpired reports whether the reset token has aged out.
func (u *User) IsResetTokenExpired() bool {
	if u.ResetSentAt == nil {
		return true
	}
	return time.Since(*u.ResetSentAt) > ResetTokenTTL
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
