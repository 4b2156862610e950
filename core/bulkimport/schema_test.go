package bulkimport

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestSchemaFor(t *testing.T) {
	if _, err := SchemaFor(KindStudent); err != nil {
		t.Errorf("SchemaFor(student) error = %v", err)
	}
	if _, err := SchemaFor(KindCollege); err != nil {
		t.Errorf("SchemaFor(college) error = %v", err)
	}
	if _, err := SchemaFor("faculty"); errors.Cause(err) != ErrUnknownKind {
		t.Errorf("SchemaFor(faculty) error = %v; want ErrUnknownKind", err)
	}
}

func TestStudentSchemaValidate(t *testing.T) {
	readRow := func(t *testing.T, values []interface{}) RawRow {
		t.Helper()
		buf := buildWorkbook(t, [][]interface{}{studentHeader, values})
		rows, err := ReadWorkbook(buf)
		if err != nil {
			t.Fatalf("ReadWorkbook() failed: %v", err)
		}
		return rows[0]
	}

	tests := []struct {
		name        string
		row         []interface{}
		wantReasons []string
	}{
		{
			name: "minimal valid row",
			row:  studentRow("John", "Doe", "john@example.com", "STU001"),
		},
		{
			name: "full valid row",
			row: studentRow("Jane", "Smith", "jane@example.com", "STU002", "2001-03-22",
				"Female", "+91-9876543211", "456 Oak Avenue", 2023, "2023-2027", 9.2, 92.0,
				"Java, MySQL", "s3cret", "Active"),
		},
		{
			name: "gpa of zero is valid",
			row: studentRow("Jane", "Smith", "jane@example.com", "STU002", "", "", "", "",
				"", "", 0),
		},
		{
			name:        "missing required fields are all reported",
			row:         studentRow("", "", "", ""),
			wantReasons: []string{"name.first is required", "name.last is required", "email is required", "studentid is required"},
		},
		{
			name:        "bad email format",
			row:         studentRow("John", "Doe", "not-an-email", "STU001"),
			wantReasons: []string{"email must be a valid email address"},
		},
		{
			name: "out-of-range numbers",
			row: studentRow("John", "Doe", "john@example.com", "STU001", "", "", "", "",
				1776, "", 11, 101),
			wantReasons: []string{
				"enrollmentyear must be a number between 1900 and 2100",
				"gpa must be a number between 0 and 10",
				"attendance must be a number between 0 and 100",
			},
		},
		{
			name:        "bad enum and bad date reported together",
			row:         studentRow("John", "Doe", "john@example.com", "STU001", "22/03/2001", "Unknown"),
			wantReasons: []string{"dob must be a date in YYYY-MM-DD format", "gender must be one of: Male, Female, Other"},
		},
		{
			name:        "invalid format never reported as missing",
			row:         studentRow("John", "Doe", "bad-email", "STU001"),
			wantReasons: []string{"email must be a valid email address"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := studentSchema.Validate(readRow(t, tt.row))
			if !reflect.DeepEqual(got, tt.wantReasons) {
				t.Errorf("Validate() = %v; want %v", got, tt.wantReasons)
			}
		})
	}
}

func TestCollegeSchemaValidate(t *testing.T) {
	readRow := func(t *testing.T, values []interface{}) RawRow {
		t.Helper()
		buf := buildWorkbook(t, [][]interface{}{collegeHeader, values})
		rows, err := ReadWorkbook(buf)
		if err != nil {
			t.Fatalf("ReadWorkbook() failed: %v", err)
		}
		return rows[0]
	}

	tests := []struct {
		name        string
		row         []interface{}
		wantReasons []string
	}{
		{
			name: "valid row",
			row:  []interface{}{"College of Engineering", "coe", "coe@example.edu", "", "", "", "Engineering College", "", "Active"},
		},
		{
			name:        "missing required fields",
			row:         []interface{}{"", "", ""},
			wantReasons: []string{"name is required", "code is required", "email is required"},
		},
		{
			name: "bad type enum",
			row:  []interface{}{"College of Engineering", "coe", "coe@example.edu", "", "", "", "Cooking College"},
			wantReasons: []string{
				"type must be one of: Engineering College, Medical College, Arts College, Science College, Commerce College, Law College, Other",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collegeSchema.Validate(readRow(t, tt.row))
			if !reflect.DeepEqual(got, tt.wantReasons) {
				t.Errorf("Validate() = %v; want %v", got, tt.wantReasons)
			}
		})
	}
}
