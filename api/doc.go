// Package api provides the REST API for the Snakes & Ladders game.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create a session ({"config_id": "classic"})
//   - GET    /api/sessions              list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}         session details
//   - DELETE /api/sessions/{id}         delete a session
//
// Game:
//   - POST /api/sessions/{id}/start    seat players ({"player_count": 3, "names": ["Ann"]})
//   - POST /api/sessions/{id}/roll     resolve one turn for the current player
//   - POST /api/sessions/{id}/reset    drop the players and draw a new board
//
// State:
//   - GET /api/sessions/{id}/state     game snapshot
//   - GET /api/sessions/{id}/board     nodes, edges and links
//   - GET /api/sessions/{id}/route     shortest path (?from=1&to=64&mode=bfs|weighted)
//   - GET /api/sessions/{id}/history   move events (?page=1&limit=20&order=desc)
//   - GET /api/sessions/{id}/log       turn log lines (?tail=N)
//
// Configuration:
//   - GET  /api/configs                list rule sets
//   - GET  /api/configs/{name}         one rule set
//   - POST /api/configs                save a rule set
//
// Other:
//   - GET /health
//   - GET /ws?session={id}             live updates, see package websocket
//
// Errors are returned as {"error": "..."}. Unknown sessions and configs map
// to 404, bad input to 400, rolling outside a running game to 409, invalid
// rules or an unbuildable board to 422. Rolls are rate limited per session
// and answer 429 when over the limit.
package api
