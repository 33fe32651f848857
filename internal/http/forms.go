package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mrlokans/bookoutlet/internal/validators"
)

const (
	msgRequired    = "This field is required."
	msgWholeNumber = "Enter a whole number."
	msgBadChoice   = "Select a valid choice. That choice is not one of the available choices."
	msgBadList     = "Enter a list of values."
)

func textField(name, label string, values url.Values, errs validators.FieldErrors, maxLength int) formField {
	return formField{
		Name:      name,
		Label:     label,
		Type:      "text",
		Value:     values.Get(name),
		Error:     errs.Get(name),
		MaxLength: maxLength,
		Required:  true,
	}
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func optionalIDString(id *uint) string {
	if id == nil {
		return ""
	}
	return uintString(*id)
}

// formParser collects conversion errors while reading a submitted form.
type formParser struct {
	values url.Values
	errs   validators.FieldErrors
}

func newFormParser(values url.Values) *formParser {
	return &formParser{values: values, errs: validators.FieldErrors{}}
}

func (p *formParser) text(name string) string {
	return p.values.Get(name)
}

func (p *formParser) checkbox(name string) bool {
	switch strings.ToLower(p.values.Get(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func (p *formParser) integer(name string) int {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		p.errs[name] = msgRequired
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs[name] = msgWholeNumber
		return 0
	}
	return n
}

func (p *formParser) optionalID(name string) *uint {
	id, ok := parseOptionalID(p.values.Get(name))
	if !ok {
		p.errs[name] = msgBadChoice
	}
	return id
}

func (p *formParser) ids(name string) []uint {
	var ids []uint
	for _, raw := range p.values[name] {
		id, ok := parseOptionalID(raw)
		if !ok {
			p.errs[name] = msgBadList
			return nil
		}
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return ids
}
