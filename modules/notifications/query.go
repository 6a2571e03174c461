package notifications

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrymomot/internhub/pkg/notifications"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// parseListQuery reads unread, type, priority and limit. type and priority
// accept repeated or comma-separated values.
func parseListQuery(q url.Values) (notifications.ListOptions, error) {
	opts := notifications.ListOptions{Limit: DefaultListLimit}

	if v := q.Get("unread"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.Join(ErrInvalidQuery, err)
		}
		opts.OnlyUnread = b
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.Join(ErrInvalidQuery, errors.New("limit must be a positive integer"))
		}
		opts.Limit = min(n, MaxListLimit)
	}

	for _, v := range splitValues(q["type"]) {
		t := notifications.Type(v)
		if !slices.Contains(notifications.Types(), t) {
			return opts, errors.Join(ErrInvalidQuery, errors.New("unknown type "+v))
		}
		opts.Types = append(opts.Types, t)
	}

	for _, v := range splitValues(q["priority"]) {
		p := notifications.Priority(v)
		if !slices.Contains(notifications.Priorities(), p) {
			return opts, errors.Join(ErrInvalidQuery, errors.New("unknown priority "+v))
		}
		opts.Priorities = append(opts.Priorities, p)
	}

	return opts, nil
}

func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
