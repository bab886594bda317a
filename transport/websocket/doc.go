// Package websocket pushes live game updates to watchers.
//
// A Hub groups connections by session ID. After a roll, a start or a reset
// the API broadcasts a Message to every watcher of that session:
//
//	{"session_id": "a1b2", "event": "turn", "turn": {...}, "state": {...}}
//
// Events are "state_update" (a snapshot only), "turn" (the resolved turn and
// the snapshot after it) and "reset". Watchers are read-only; anything they
// send is discarded. A watcher that cannot keep up is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
