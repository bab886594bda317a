// Package session provides session management for the Snakes & Ladders game.
//
// Manager keeps every live game in memory, keyed by a short case-insensitive
// ID. Each service.Session owns its own engine, so two sessions never share a
// board or players. Generated IDs are four hex characters taken from a random
// UUID; a caller may also pick its own ID.
//
// Sessions are not persisted. Idle ones are dropped by CleanupExpiredSessions,
// which RunCleanup calls on a ticker:
//
//	manager := session.NewManager()
//	go manager.RunCleanup(ctx, time.Minute, 2*time.Hour)
//
//	sess, err := manager.Create("", rules)
//	if err != nil {
//		log.Fatal(err)
//	}
package session
