package service

import (
	"strings"

	"task-manager/internal/model"
)

// QueryParams carries the raw listing parameters as received.
type QueryParams struct {
	Filter   string
	Priority string
	Category string
	Tag      string
	Sort     string
}

// ParseTaskQuery recognises the listing options. "all", empty or unknown status and
// sort values fall back to no constraint and newest first.
func ParseTaskQuery(p QueryParams) model.TaskQuery {
	q := model.TaskQuery{
		Status:   model.StatusAll,
		Priority: model.Priority(allToEmpty(p.Priority)),
		Category: allToEmpty(p.Category),
		Tag:      allToEmpty(p.Tag),
		Sort:     model.SortNewest,
	}

	switch model.StatusFilter(strings.TrimSpace(p.Filter)) {
	case model.StatusCompleted:
		q.Status = model.StatusCompleted
	case model.StatusPending:
		q.Status = model.StatusPending
	}

	switch s := model.TaskSort(strings.TrimSpace(p.Sort)); s {
	case model.SortOldest, model.SortAlphabetical, model.SortDueDate:
		q.Sort = s
	}

	return q
}

// Params renders q back into its raw form, for echoing the selection in forms.
func Params(q model.TaskQuery) QueryParams {
	return QueryParams{
		Filter:   string(q.Status),
		Priority: emptyToAll(string(q.Priority)),
		Category: emptyToAll(q.Category),
		Tag:      emptyToAll(q.Tag),
		Sort:     string(q.Sort),
	}
}

func allToEmpty(value string) string {
	value = strings.TrimSpace(value)
	if value == "all" {
		return ""
	}
	return value
}

func emptyToAll(value string) string {
	if value == "" {
		return "all"
	}
	return value
}
