// Package server exposes placement sessions over a JSON HTTP API.
//
// Sessions live in memory in a [session.Store] and are addressed by UUID.
// Every request that touches a session holds that session's lock for the
// duration of the operation, so concurrent clients never observe a
// half-applied placement or resize.
//
// # Routes
//
//	GET    /api/health
//	GET    /api/stats                         (when Options.Stats is set)
//	GET    /api/sessions
//	POST   /api/sessions                      create, optional container
//	POST   /api/sessions/import               create from a task document
//	GET    /api/sessions/{id}                 task document
//	DELETE /api/sessions/{id}
//	POST   /api/sessions/{id}/boxes           201 box | 422 rejection
//	DELETE /api/sessions/{id}/boxes/{boxID}   204 | 404
//	PUT    /api/sessions/{id}/container       200 | 409 with offending ids
//	GET    /api/sessions/{id}/layers          ?mode=&keep_empty=&min_layers=&format=
//
// Errors are JSON objects of the form
//
//	{"error": "OVERLAP", "message": "...", "code": 422, "ids": ["item0001"]}
//
// [session.Store]: github.com/L1TangDingZhen/BOX-P/pkg/session.Store
package server
