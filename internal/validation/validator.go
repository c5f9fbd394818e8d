package validation

import (
	"database/sql/driver"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/panjilaras/Dashboard-PI/internal/model"
)

var hexRGBRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their wire names: categoryId rather than CategoryID.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, key := range []string{"json", "query", "param"} {
			name, _, _ := strings.Cut(field.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	// Tags on a model.Nullable field apply to the wrapped value.
	v.RegisterCustomTypeFunc(nullableValue,
		model.Nullable[string]{}, model.Nullable[int64]{}, model.Nullable[time.Time]{})

	_ = v.RegisterValidation("hexrgb", func(fl validator.FieldLevel) bool {
		return hexRGBRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("idlist", func(fl validator.FieldLevel) bool {
		_, err := ParseIDList(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	return v
}

func nullableValue(field reflect.Value) any {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		if val, err := valuer.Value(); err == nil {
			return val
		}
	}
	return nil
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// IsStrongPassword enforces the password policy: at least 8 characters with
// an upper case letter, a lower case letter and a digit.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ParseIDList parses "1, 2,2,3" into [1 2 3]. Blank entries are skipped and
// duplicates dropped in first-seen order. Any non-positive or non-numeric
// entry is an error.
func ParseIDList(raw string) ([]int64, error) {
	var ids []int64
	seen := make(map[int64]struct{})

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, &strconv.NumError{Func: "ParseIDList", Num: part, Err: strconv.ErrSyntax}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}
