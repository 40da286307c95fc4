package controllers

import (
	"net/url"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// parsePublicFilter reads text, categories, paid, rangeStart, rangeEnd, onlyAvailable and sort.
func parsePublicFilter(q url.Values) (domain.PublicEventFilter, error) {
	f := domain.PublicEventFilter{Text: strings.TrimSpace(q.Get("text"))}
	var err error
	if f.CategoryIDs, err = helpers.QueryInt64List(q, "categories"); err != nil {
		return f, err
	}
	if f.Paid, err = helpers.QueryBool(q, "paid"); err != nil {
		return f, err
	}
	if f.RangeStart, err = helpers.QueryTime(q, "rangeStart"); err != nil {
		return f, err
	}
	if f.RangeEnd, err = helpers.QueryTime(q, "rangeEnd"); err != nil {
		return f, err
	}
	available, err := helpers.QueryBool(q, "onlyAvailable")
	if err != nil {
		return f, err
	}
	f.OnlyAvailable = available != nil && *available
	if f.Sort, err = domain.ParsePublicEventSort(q.Get("sort")); err != nil {
		return f, err
	}
	return f, nil
}

// parseAdminFilter reads users, states, categories, rangeStart and rangeEnd.
func parseAdminFilter(q url.Values) (domain.AdminEventFilter, error) {
	var f domain.AdminEventFilter
	var err error
	if f.InitiatorIDs, err = helpers.QueryInt64List(q, "users"); err != nil {
		return f, err
	}
	for _, s := range helpers.QueryList(q, "states") {
		f.States = append(f.States, domain.EventState(s))
	}
	if f.CategoryIDs, err = helpers.QueryInt64List(q, "categories"); err != nil {
		return f, err
	}
	if f.RangeStart, err = helpers.QueryTime(q, "rangeStart"); err != nil {
		return f, err
	}
	if f.RangeEnd, err = helpers.QueryTime(q, "rangeEnd"); err != nil {
		return f, err
	}
	return f, f.Validate()
}
