package services

import "strings"

// changeSet builds admin log change messages such as "Changed title and rating.".
type changeSet struct {
	fields []string
}

func newChangeSet() *changeSet {
	return &changeSet{}
}

func (c *changeSet) add(field string, changed bool) *changeSet {
	if changed {
		c.fields = append(c.fields, field)
	}
	return c
}

func (c *changeSet) Message() string {
	switch len(c.fields) {
	case 0:
		return "No fields changed."
	case 1:
		return "Changed " + c.fields[0] + "."
	default:
		last := len(c.fields) - 1
		return "Changed " + strings.Join(c.fields[:last], ", ") + " and " + c.fields[last] + "."
	}
}
