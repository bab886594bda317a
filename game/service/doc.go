// Package service provides the business logic layer for the Snakes & Ladders game.
//
// The service package implements:
//   - Multi-session game management
//   - Rule set loading and validation
//   - Turn orchestration and state snapshots
//   - Paginated move history and game logs
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule set loading and storage.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine, and the service
// serializes every call that mutates one, so an engine never sees two turns
// at once.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_, err = gameService.StartGame(ctx, info.ID, 2, []string{"Ann", "Bo"})
//	result, err := gameService.Roll(ctx, info.ID)
package service
