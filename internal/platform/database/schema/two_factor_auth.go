// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// TwoFactorAuthTable represents the 'two_factor_auth' table
type TwoFactorAuthTable struct {
	Table       string
	ID          string
	AuthID      string
	Secret      string
	BackupCodes string
	EnabledAt   string
	LastUsed    string
	CreatedAt   string
	UpdatedAt   string
	DeletedAt   string
}

// TwoFactorAuth is the schema definition for two_factor_auth
var TwoFactorAuth = TwoFactorAuthTable{
	Table:       "two_factor_auth",
	ID:          "id",
	AuthID:      "auth_id",
	Secret:      "secret",
	BackupCodes: "backup_codes",
	EnabledAt:   "enabled_at",
	LastUsed:    "last_used",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
	DeletedAt:   "deleted_at",
}

// Columns returns all standard column names
func (t TwoFactorAuthTable) Columns() []string {
	return []string{
		t.ID, t.AuthID, t.Secret, t.BackupCodes, t.EnabledAt,
		t.LastUsed, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
