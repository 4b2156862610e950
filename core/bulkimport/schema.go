package bulkimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
)

// RecordKind selects the import target.
type RecordKind string

const (
	KindStudent RecordKind = "student"
	KindCollege RecordKind = "college"
)

var ErrUnknownKind = errors.New("unknown record kind")

// local@domain.tld, same shape the upload templates document
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type (
	FieldKind int

	// Field describes one column of a record schema. Required-ness and
	// format violations are separate checks: a present-but-invalid value is
	// never reported as missing, and a present zero is a value, not an
	// omission.
	Field struct {
		Name     string
		Required bool
		Kind     FieldKind
		Min, Max float64  // FieldNumber bounds, inclusive
		Enum     []string // FieldEnum members
	}

	// RecordSchema is the static, per-record-type description of required
	// fields and field-level validators. Loaded once at startup.
	RecordSchema struct {
		Kind   RecordKind
		Fields []Field
	}
)

const (
	FieldString FieldKind = iota
	FieldEmail
	FieldNumber
	FieldEnum
	FieldDate // YYYY-MM-DD
)

var (
	studentSchema = RecordSchema{
		Kind: KindStudent,
		Fields: []Field{
			{Name: "name.first", Required: true},
			{Name: "name.last", Required: true},
			{Name: "email", Required: true, Kind: FieldEmail},
			{Name: "studentid", Required: true},
			{Name: "dob", Kind: FieldDate},
			{Name: "gender", Kind: FieldEnum, Enum: student.Genders},
			{Name: "enrollmentyear", Kind: FieldNumber, Min: 1900, Max: 2100},
			{Name: "gpa", Kind: FieldNumber, Min: 0, Max: 10},
			{Name: "attendance", Kind: FieldNumber, Min: 0, Max: 100},
			{Name: "status", Kind: FieldEnum, Enum: student.Statuses},
		},
	}

	collegeSchema = RecordSchema{
		Kind: KindCollege,
		Fields: []Field{
			{Name: "name", Required: true},
			{Name: "code", Required: true},
			{Name: "email", Required: true, Kind: FieldEmail},
			{Name: "type", Kind: FieldEnum, Enum: college.Types},
			{Name: "status", Kind: FieldEnum, Enum: college.Statuses},
		},
	}
)

// SchemaFor returns the schema for the given record kind.
func SchemaFor(kind RecordKind) (RecordSchema, error) {
	switch kind {
	case KindStudent:
		return studentSchema, nil
	case KindCollege:
		return collegeSchema, nil
	default:
		return RecordSchema{}, errors.Wrap(ErrUnknownKind, string(kind))
	}
}

// Validate checks a raw row against the schema and returns every violation as
// a human-readable reason. A nil result means the row is valid. All fields
// are checked before returning so the caller sees every problem at once.
func (s RecordSchema) Validate(row RawRow) []string {
	var reasons []string
	for _, fld := range s.Fields {
		if !row.Has(fld.Name) {
			if fld.Required {
				reasons = append(reasons, fld.Name+" is required")
			}
			continue
		}

		val := row.Value(fld.Name)
		switch fld.Kind {
		case FieldEmail:
			if !emailRegex.MatchString(strings.ToLower(val)) {
				reasons = append(reasons, fld.Name+" must be a valid email address")
			}
		case FieldNumber:
			n, err := strconv.ParseFloat(val, 64)
			if err != nil || n < fld.Min || n > fld.Max {
				reasons = append(reasons, fmt.Sprintf("%s must be a number between %v and %v", fld.Name, fld.Min, fld.Max))
			}
		case FieldEnum:
			if !contains(fld.Enum, val) {
				reasons = append(reasons, fld.Name+" must be one of: "+strings.Join(fld.Enum, ", "))
			}
		case FieldDate:
			if _, err := parseDate(val); err != nil {
				reasons = append(reasons, fld.Name+" must be a date in YYYY-MM-DD format")
			}
		}
	}
	return reasons
}

func contains(vals []string, val string) bool {
	for _, v := range vals {
		if v == val {
			return true
		}
	}
	return false
}
