// Package websocket pushes live game updates to browsers and other watchers.
//
// A Hub groups connections by session ID (case-insensitive) and runs a
// single event loop that owns the client set. Clients only listen: after
// every state change the HTTP layer calls BroadcastToSession with the new
// GameState, and BroadcastEvent with the GameEvents of the move.
//
// Message Protocol:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//	{"session_id":"ab12","event":"game_events","data":[{"type":"push",...}]}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Broadcasts never block the caller. When the queue is full the message is
// dropped, and a client that cannot keep up is disconnected.
package websocket
