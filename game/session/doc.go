// Package session keeps the games in progress in memory.
//
// Manager implements service.SessionManager. Each session owns its own
// engine.GameEngine, so moves in one session never touch another. IDs are
// case-insensitive; an empty ID passed to Create gets a random 4-character
// hex ID.
//
// Sessions live only as long as the process. Idle ones can be dropped with
// CleanupExpiredSessions or by running RunJanitor in a goroutine:
//
//	manager := session.NewManager()
//	go manager.RunJanitor(ctx, 24*time.Hour, time.Hour)
//
//	sess, err := manager.Create("", level)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Engine.Move("left")
package session
