package notifications

// Stats aggregates a set of notifications.
// ByType and ByPriority always carry every known key, zero included.
type Stats struct {
	Total      int              `json:"total"`
	Unread     int              `json:"unread"`
	ByType     map[Type]int     `json:"byType"`
	ByPriority map[Priority]int `json:"byPriority"`
	ByCategory map[string]int   `json:"byCategory"`
}

// ComputeStats counts notifications by read state, type, priority and category.
func ComputeStats(notifs []Notification) Stats {
	st := Stats{
		Total:      len(notifs),
		ByType:     make(map[Type]int, len(Types())),
		ByPriority: make(map[Priority]int, len(Priorities())),
		ByCategory: make(map[string]int),
	}
	for _, t := range Types() {
		st.ByType[t] = 0
	}
	for _, p := range Priorities() {
		st.ByPriority[p] = 0
	}

	for _, n := range notifs {
		if !n.Read {
			st.Unread++
		}
		st.ByType[n.Type]++
		st.ByPriority[n.Priority]++
		if n.Category != "" {
			st.ByCategory[n.Category]++
		}
	}
	return st
}
