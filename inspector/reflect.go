// Package inspector renders component values as text, driven by their
// `inspect` struct tags.
package inspector

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Style selects how a field is rendered.
type Style int

const (
	StyleAuto Style = iota
	StyleText
	StyleBar
	StyleFlag
	StyleSkip
)

var styleNames = map[string]Style{
	"label": StyleText,
	"bar":   StyleBar,
	"bool":  StyleFlag,
	"skip":  StyleSkip,
}

// Tag is a parsed `inspect:"style[,fmt:...][,max:...]"` struct tag.
type Tag struct {
	Style  Style
	Format string  // printf verb for StyleText, "" = default
	Max    float64 // full-scale value for StyleBar
}

// Field is one exported struct field ready for rendering.
type Field struct {
	Name  string
	Value any
	Tag
}

// ParseTag parses an inspect struct tag. Unknown styles fall back to
// StyleAuto and unknown options are ignored. Max defaults to 1.
//
//	`inspect:"bar,max:20"`
//	`inspect:"label,fmt:%.1fd"`
//	`inspect:"skip"`
func ParseTag(tag string) Tag {
	t := Tag{Max: 1}
	if tag == "" {
		return t
	}

	style, opts, _ := strings.Cut(tag, ",")
	t.Style = styleNames[strings.TrimSpace(style)]

	for opt := range strings.SplitSeq(opts, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(opt), ":")
		if !ok {
			continue
		}
		switch key {
		case "fmt":
			t.Format = val
		case "max":
			if m, err := strconv.ParseFloat(val, 64); err == nil && m > 0 {
				t.Max = m
			}
		}
	}
	return t
}

// ExtractFields returns the inspectable fields of a struct or struct
// pointer, in declaration order. Anything else yields nil.
func ExtractFields(component any) []Field {
	v := reflect.Indirect(reflect.ValueOf(component))
	if v.Kind() != reflect.Struct {
		return nil
	}

	var fields []Field
	for _, sf := range reflect.VisibleFields(v.Type()) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		tag := ParseTag(sf.Tag.Get("inspect"))
		if tag.Style == StyleSkip {
			continue
		}

		fv := v.FieldByIndex(sf.Index)
		if tag.Style == StyleAuto {
			tag.Style = styleFor(fv)
		}
		fields = append(fields, Field{Name: sf.Name, Value: fv.Interface(), Tag: tag})
	}
	return fields
}

func styleFor(v reflect.Value) Style {
	if v.Kind() == reflect.Bool {
		return StyleFlag
	}
	return StyleText
}

// FormatValue renders value with format, or with a default that prints
// floats to two decimals and uses String() where the type has one.
func FormatValue(value any, format string) string {
	if format != "" {
		return fmt.Sprintf(format, value)
	}
	switch v := value.(type) {
	case fmt.Stringer:
		return v.String()
	case float32, float64:
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprint(value)
}

// Float converts any numeric value to float64.
func Float(value any) (float64, bool) {
	v := reflect.ValueOf(value)
	switch {
	case !v.IsValid():
		return 0, false
	case v.CanFloat():
		return v.Float(), true
	case v.CanInt():
		return float64(v.Int()), true
	case v.CanUint():
		return float64(v.Uint()), true
	}
	return 0, false
}
