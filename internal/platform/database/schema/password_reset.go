// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// PasswordResetTable represents the 'password_resets' table
type PasswordResetTable struct {
	Table     string
	ID        string
	AuthID    string
	TokenHash string
	ExpiresAt string
	Used      string
	CreatedAt string
	UpdatedAt string
}

// PasswordReset is the schema definition for password_resets
var PasswordReset = PasswordResetTable{
	Table:     "password_resets",
	ID:        "id",
	AuthID:    "auth_id",
	TokenHash: "token_hash",
	ExpiresAt: "expires_at",
	Used:      "used",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

// Columns returns all standard column names
func (t PasswordResetTable) Columns() []string {
	return []string{t.ID, t.AuthID, t.TokenHash, t.ExpiresAt, t.Used, t.CreatedAt, t.UpdatedAt}
}
