package models

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"gorm.io/gorm/schema"
)

// TimestampSerializer is the gorm serializer name for time columns. Besides
// native datetime values it reads the TEXT timestamps the crawler scripts
// store, and writes time.Time values back unchanged.
const TimestampSerializer = "sqltime"

// timestampLayouts are tried in order for TEXT timestamps. Values without
// an offset are read as UTC wall-clock time.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func init() {
	schema.RegisterSerializer(TimestampSerializer, timestampSerializer{})
}

type timestampSerializer struct{}

func (timestampSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	var t time.Time
	switch v := dbValue.(type) {
	case nil:
		return nil
	case time.Time:
		t = v
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return fmt.Errorf("column %s: %w", field.DBName, err)
		}
		t = parsed
	case []byte:
		parsed, err := ParseTimestamp(string(v))
		if err != nil {
			return fmt.Errorf("column %s: %w", field.DBName, err)
		}
		t = parsed
	default:
		return fmt.Errorf("column %s: unsupported timestamp value %T", field.DBName, dbValue)
	}

	fv := field.ReflectValueOf(ctx, dst)
	if fv.Kind() == reflect.Ptr {
		fv.Set(reflect.ValueOf(&t))
		return nil
	}
	fv.Set(reflect.ValueOf(t))
	return nil
}

func (timestampSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	switch v := fieldValue.(type) {
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	default:
		return fieldValue, nil
	}
}

// ParseTimestamp reads a stored TEXT timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
