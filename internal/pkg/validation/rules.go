package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Room numbers: letters, digits, dash, e.g. "B-204"
	RoomNumberPattern = `^[A-Za-z0-9][A-Za-z0-9\-]{0,19}$`

	// Academic year: "2025" or "2025-26" / "2025-2026"
	AcademicYearPattern = `^(\d{4})(?:-(\d{2}|\d{4}))?$`

	// Phone numbers: optional +, 7 to 15 digits
	PhonePattern = `^\+?[0-9]{7,15}$`

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	RoomNumber   *regexp.Regexp
	AcademicYear *regexp.Regexp
	Phone        *regexp.Regexp
}{
	RoomNumber:   regexp.MustCompile(RoomNumberPattern),
	AcademicYear: regexp.MustCompile(AcademicYearPattern),
	Phone:        regexp.MustCompile(PhonePattern),
}

// IsHHMM reports whether s is a 24h clock time such as "09:30"
func IsHHMM(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// IsAcademicYear accepts "2025", "2025-26" and "2025-2026" where the second year follows the first
func IsAcademicYear(s string) bool {
	m := CompiledPatterns.AcademicYear.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	if m[2] == "" {
		return true
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if len(m[2]) == 2 {
		return end == (start+1)%100
	}
	return end == start+1
}

// IsDate reports whether s is a calendar date in YYYY-MM-DD form
func IsDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func stringRule(check func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return check(fl.Field().String())
	}
}

// Register adds the custom rules to a validator instance
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"hhmm":         stringRule(IsHHMM),
		"academicyear": stringRule(IsAcademicYear),
		"roomnumber":   stringRule(CompiledPatterns.RoomNumber.MatchString),
		"phone":        stringRule(CompiledPatterns.Phone.MatchString),
		"date":         stringRule(IsDate),
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// JSONFieldName reports fields by their json (or form) name in validation errors
func JSONFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

var registerOnce sync.Once

// RegisterGinValidators installs the custom rules on gin's default binding engine
func RegisterGinValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if ok {
			v.RegisterTagNameFunc(JSONFieldName)
			err = Register(v)
		}
	})
	return err
}
