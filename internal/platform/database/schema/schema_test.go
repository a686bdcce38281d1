// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ultimatemercer/identity/internal/platform/database/schema"
)

/*
TestColumns checks every catalog lists each column exactly once.
*/
func TestColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		count   int
	}{
		{"auth", schema.Auth.Columns(), 14},
		{"auth_providers", schema.AuthProvider.Columns(), 4},
		{"users", schema.UserProfile.Columns(), 17},
		{"password_resets", schema.PasswordReset.Columns(), 7},
		{"two_factor_auth", schema.TwoFactorAuth.Columns(), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.columns, tt.count)

			seen := map[string]bool{}
			for _, column := range tt.columns {
				assert.NotEmpty(t, column)
				assert.False(t, seen[column], "duplicate column %s", column)
				seen[column] = true
			}
		})
	}
}
