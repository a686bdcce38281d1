// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// SetAfterAuthInsert installs a hook that runs between the auth and profile
// inserts of CreateIdentity.
func SetAfterAuthInsert(store *SQLiteStore, hook func(context.Context) error) {
	store.afterAuthInsert = hook
}

// SetClock replaces the service clock.
func SetClock(service *Service, now func() time.Time) {
	service.now = now
}
