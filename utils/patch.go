package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// Patch turns an update DTO into the payload filed as history newData.
// Only pointer fields that were sent are kept, keyed by their json name, so
// a SaleUpdate{TotalAmount: &450} gives {"totalAmount": 450}. Identity
// fields such as lotName are included too; callers reject those separately.
func Patch(dto any) map[string]any {
	out := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return out
	}
	s := v.Elem()
	for i := 0; i < s.NumField(); i++ {
		fv := s.Field(i)
		if fv.Kind() != reflect.Ptr || fv.IsNil() {
			continue
		}
		name, _, _ := strings.Cut(s.Type().Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = fv.Elem().Interface()
	}
	return out
}

// PatchColumns is Patch restricted to the writable fields of a record and
// keyed by column name: {"numberOfKgs": "number_of_kgs"} maps the payload
// key to the column gorm updates. Anything not listed is dropped.
func PatchColumns(dto any, columns map[string]string) map[string]any {
	patch := Patch(dto)
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		if col, ok := columns[k]; ok {
			out[col] = v
		}
	}
	return out
}

func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
