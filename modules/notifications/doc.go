// Package notifications mounts the notification endpoints for signed-in
// users.
//
//	GET  /            list (query: unread, type, priority, limit)
//	GET  /stats       counts by type, priority and category
//	GET  /stream      Datastar SSE: patches notifications, unreadCount and toasts
//	POST /read-all    mark every unread notification read
//	POST /{id}/read   mark one notification read
//
// Every route requires an HS256 token in the Authorization header, or in the
// token query parameter for EventSource clients.
package notifications
