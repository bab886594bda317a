// Package mcp exposes the Snakes & Ladders game as Model Context Protocol tools.
//
// Client is a thin proxy: every tool call becomes a REST request against the
// api package, and the JSON answer is rendered as text for the agent. Nothing
// here touches an engine directly, so the same tools work against a local or
// remote server.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - start_game, roll_dice, reset_game
//   - game_state, board, shortest_path, move_history
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// stdio
//	server.ServeStdio(client.GetMCPServer())
//
//	// or one JSON-RPC message per HTTP request
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
