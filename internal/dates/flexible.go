package dates

import (
	"fmt"
	"strings"
	"time"
)

// dayFirstLayouts are tried in order when an upload does not name a date format.
var dayFirstLayouts = []string{
	LayoutISO,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2-1-06",
	"2.1.2006",
	"2006/1/2",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2 Jan 2006",
	LayoutDDMMYYYY,
}

var strftimeDirectives = map[byte]string{
	'd': "02",
	'm': "01",
	'Y': "2006",
	'y': "06",
	'H': "15",
	'M': "04",
	'S': "05",
	'b': "Jan",
	'B': "January",
	'%': "%",
}

// StrftimeLayout translates a strftime-style format (%d/%m/%Y) into a Go layout.
func StrftimeLayout(format string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% in date format %q", format)
		}
		i++
		layout, ok := strftimeDirectives[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
		}
		sb.WriteString(layout)
	}
	return sb.String(), nil
}

// Parser parses free-form upload dates. With an explicit format only that layout is
// accepted; without one a fixed day-first list is tried.
type Parser struct {
	layouts []string
}

// NewParser builds a Parser from an optional strftime-style format.
func NewParser(format string) (*Parser, error) {
	format = strings.TrimSpace(format)
	if format == "" {
		return &Parser{layouts: dayFirstLayouts}, nil
	}
	layout, err := StrftimeLayout(format)
	if err != nil {
		return nil, err
	}
	return &Parser{layouts: []string{layout}}, nil
}

// Parse returns the calendar date of s.
func (p *Parser) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range p.layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Civil(t), nil
		}
	}
	return time.Time{}, &InvalidFormatError{Value: s, Layout: p.layouts[0]}
}
