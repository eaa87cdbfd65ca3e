// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Field Names

const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldPhone           = "phone"
	FieldFullName        = "fullName"
	FieldRefreshToken    = "refreshToken"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldToken           = "token"
)

// # Client Messages

const (
	// msgInvalidCredentials is shared by the unknown-email and wrong-password
	// paths of login so the response never reveals which one failed.
	msgInvalidCredentials = "Invalid credentials"

	msgInvalidRefresh  = "Invalid refresh token"
	msgRevokedRefresh  = "Refresh token has been revoked"
	msgWrongPassword   = "Current password is incorrect"
	msgInvalidReset    = "Invalid or expired reset token"
	msgUserGone        = "User no longer exists"
	msgEmailRegistered = "Email already registered"
)

// maxFullNameLen bounds the display name accepted at registration.
const maxFullNameLen = 120

// # Audit Events

const (
	EventRegister      = "register"
	EventLogin         = "login"
	EventRefresh       = "refresh"
	EventLogout        = "logout"
	EventChangePass    = "change_password"
	EventResetRequest  = "reset_request"
	EventResetPassword = "reset_password"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
