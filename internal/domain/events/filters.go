package events

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseAdminFilters reads the admin listing filters from query parameters.
// Timestamps are RFC3339.
func ParseAdminFilters(values url.Values) (AdminFilters, error) {
	filters := AdminFilters{}

	userIDs, err := parseIDList("users", values["users"])
	if err != nil {
		return filters, err
	}
	filters.UserIDs = userIDs

	categoryIDs, err := parseIDList("categories", values["categories"])
	if err != nil {
		return filters, err
	}
	filters.CategoryIDs = categoryIDs

	for _, raw := range splitList(values["states"]) {
		state, ok := ParseState(raw)
		if !ok {
			return filters, ValidationError{Field: "states", Message: "unknown state " + raw}
		}
		filters.States = append(filters.States, state)
	}

	filters.RangeStart, filters.RangeEnd, err = parseRange(values)
	if err != nil {
		return filters, err
	}
	return filters, nil
}

// ParsePublicFilters reads the public listing filters from query parameters.
func ParsePublicFilters(values url.Values) (PublicFilters, error) {
	filters := PublicFilters{
		Text: strings.TrimSpace(values.Get("text")),
	}

	categoryIDs, err := parseIDList("categories", values["categories"])
	if err != nil {
		return filters, err
	}
	filters.CategoryIDs = categoryIDs

	if raw := strings.TrimSpace(values.Get("paid")); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, ValidationError{Field: "paid", Message: "must be a boolean"}
		}
		filters.Paid = &paid
	}

	filters.RangeStart, filters.RangeEnd, err = parseRange(values)
	if err != nil {
		return filters, err
	}

	if raw := strings.TrimSpace(values.Get("onlyAvailable")); raw != "" {
		onlyAvailable, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, ValidationError{Field: "onlyAvailable", Message: "must be a boolean"}
		}
		filters.OnlyAvailable = onlyAvailable
	}

	switch sort := Sort(strings.TrimSpace(values.Get("sort"))); sort {
	case SortNone, SortEventDate, SortViews:
		filters.Sort = sort
	default:
		return filters, ValidationError{Field: "sort", Message: "must be EVENT_DATE or VIEWS"}
	}
	return filters, nil
}

func parseRange(values url.Values) (*time.Time, *time.Time, error) {
	start, err := parseTimestamp("rangeStart", values.Get("rangeStart"))
	if err != nil {
		return nil, nil, err
	}
	end, err := parseTimestamp("rangeEnd", values.Get("rangeEnd"))
	if err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, ValidationError{Field: "rangeEnd", Message: "must be on or after rangeStart"}
	}
	return start, end, nil
}

func parseTimestamp(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, ValidationError{Field: field, Message: "must be an RFC3339 timestamp"}
	}
	return &parsed, nil
}

func parseIDList(field string, raw []string) ([]int64, error) {
	items := splitList(raw)
	if len(items) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil || id <= 0 {
			return nil, ValidationError{Field: field, Message: "must be positive integers"}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// splitList accepts both repeated parameters and comma-separated values.
func splitList(raw []string) []string {
	var items []string
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			item := strings.TrimSpace(part)
			if item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}
