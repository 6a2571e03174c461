package inbox

import "github.com/dmitrymomot/internhub/pkg/notifications"

// ByType returns the loaded notifications of type t, newest first.
func (s *Store) ByType(t notifications.Type) []notifications.Notification {
	return s.filter(func(n notifications.Notification) bool { return n.Type == t })
}

// ByPriority returns the loaded notifications of priority p, newest first.
func (s *Store) ByPriority(p notifications.Priority) []notifications.Notification {
	return s.filter(func(n notifications.Notification) bool { return n.Priority == p })
}

// Unread returns the loaded unread notifications, newest first.
func (s *Store) Unread() []notifications.Notification {
	return s.filter(func(n notifications.Notification) bool { return !n.Read })
}

// Stats aggregates the loaded notifications without a round trip.
func (s *Store) Stats() notifications.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return notifications.ComputeStats(s.state.Notifications)
}

func (s *Store) filter(keep func(notifications.Notification) bool) []notifications.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []notifications.Notification{}
	for _, n := range s.state.Notifications {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
