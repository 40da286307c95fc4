package helpers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// QueryTimeLayout is the plain timestamp format accepted by range query parameters, read as UTC.
// RFC 3339 values are accepted as well.
const QueryTimeLayout = "2006-01-02 15:04:05"

// QueryList returns the values of a repeated or comma-separated query parameter, skipping empty items.
func QueryList(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for item := range strings.SplitSeq(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// QueryInt64List parses QueryList values as positive ids.
func QueryInt64List(q url.Values, name string) ([]int64, error) {
	items := QueryList(q, name)
	if len(items) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %s must be a list of positive integers", domain.ErrValidation, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// QueryBool parses an optional boolean parameter. Absent means nil.
func QueryBool(q url.Values, name string) (*bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", domain.ErrValidation, name)
	}
	return &v, nil
}

// QueryTime parses an optional timestamp parameter. Absent means nil.
func QueryTime(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(QueryTimeLayout, raw, time.UTC); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be formatted as %q or RFC 3339", domain.ErrValidation, name, QueryTimeLayout)
	}
	return &t, nil
}
