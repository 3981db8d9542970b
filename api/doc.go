// Package api serves the Sokoban game over HTTP with gorilla/mux.
//
// Endpoints:
//
//	GET    /api/health
//	POST   /api/sessions                   {"config_id": "classic"}
//	GET    /api/sessions                   ?sort=created|accessed&order=asc|desc&limit=N
//	GET    /api/sessions/unified           ?sessionIds=a,b or ?configName=level
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/state
//	POST   /api/sessions/{id}/move         {"direction": "left", "reset": false}
//	POST   /api/sessions/{id}/bulk-move    {"moves": ["left", "up"]} or {"moves": ["lUr"]}
//	POST   /api/sessions/{id}/reset
//	GET    /api/sessions/{id}/history      ?page=1&limit=20&order=desc
//	GET    /api/configs
//	POST   /api/configs                    {"name": "...", "layout": [...]}
//	GET    /api/configs/{name}
//	GET    /api/records/{level}            ?limit=N
//	GET    /ws?session={id}
//
// All bodies are JSON. Errors come back as {"error": "..."}; unknown
// sessions and levels are 404, malformed requests and invalid levels 400.
//
// A rejected move is not an HTTP error: the move endpoints answer 200 with
// success=false and the outcome code (blocked_wall, blocked_crate, ...).
// Every state change is pushed to the session's WebSocket watchers when the
// server has a hub.
package api
