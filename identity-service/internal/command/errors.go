package command

import (
	"errors"

	"github.com/xpch/platform/shared/utils"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountLocked        = errors.New("account currently locked for 30 minutes")
	ErrAccountLockedNow     = errors.New("account currently locked for 30 minutes. Contact support")
	ErrAccountInactive      = errors.New("account currently deactivated. please contact support")
	ErrInvalidCode          = errors.New("invalid verification code")
	ErrRoleMissing          = errors.New("role not found. contact support team.")
	ErrEmailExists          = errors.New("email already exist, use another email")
	ErrPhoneCodeRequired    = errors.New("phone code is required")
	ErrPhoneCodeInvalid     = errors.New("phone code is must include '+' sign")
	ErrPhoneExists          = errors.New("phone number already exists")
	ErrWeakPassword         = errors.New(utils.PasswordRuleMessage)
	ErrInvalidToken         = errors.New("invalid token")
	ErrUserNotFound         = errors.New("user does not exist")
	ErrPasswordNotGenerated = errors.New("password is self generated or self-changed")
	ErrRoleNotFound         = errors.New("role does not exist")
	ErrRoleNotHeld          = errors.New("user does not have the role")
)
