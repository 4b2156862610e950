package bulkimport

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// upload template workbooks, served by the API for download

var studentTemplateColumns = []string{
	"name.first", "name.last", "email", "studentID", "dob", "gender",
	"contactNumber", "address.line1", "address.line2", "address.city",
	"address.state", "address.country", "address.pincode", "enrollmentYear",
	"batch", "gpa", "attendance", "skills", "password", "status",
}

var studentTemplateRows = [][]interface{}{
	{
		"John", "Doe", "john.doe@example.com", "STU001", "2000-01-15", "Male",
		"+91-9876543210", "123 Main Street", "Apartment 4B", "Mumbai",
		"Maharashtra", "India", "400001", 2023,
		"2023-2027", 8.5, 85.5, "JavaScript, Python, React", "", "Active",
	},
	{
		"Jane", "Smith", "jane.smith@example.com", "STU002", "2001-03-22", "Female",
		"+91-9876543211", "456 Oak Avenue", "", "Delhi",
		"Delhi", "India", "110001", 2023,
		"2023-2027", 9.2, 92.0, "Java, Spring Boot, MySQL", "", "Active",
	},
}

var studentTemplateInstructions = [][]interface{}{
	{"Field", "Description", "Notes"},
	{"REQUIRED FIELDS", "These fields must be filled", ""},
	{"name.first", "Student's first name", "John"},
	{"name.last", "Student's last name", "Doe"},
	{"email", "Unique email address", "Used for login"},
	{"studentID", "Unique student ID / roll number", "STU001"},
	{"", "", ""},
	{"OPTIONAL FIELDS", "Can be left empty", ""},
	{"dob", "Date of birth", "YYYY-MM-DD"},
	{"gender", "Male, Female or Other", "Exact values only"},
	{"contactNumber", "Phone number", ""},
	{"address.*", "Address fields", "line1, line2, city, state, country, pincode"},
	{"enrollmentYear", "Year of enrollment", "Defaults to the current year"},
	{"batch", "Batch identifier", "Defaults to the current year"},
	{"gpa", "Grade point average", "0-10"},
	{"attendance", "Attendance percentage", "0-100"},
	{"skills", "Comma-separated skills", "JavaScript, Python"},
	{"password", "Login password", "If empty, STUDENTID@123 is used"},
	{"status", "Active or Inactive", "Defaults to Active"},
	{"", "", ""},
	{"NOTES", "", ""},
	{"Department and coordinator", "Assigned from the uploading faculty", ""},
	{"Email and studentID", "Must be unique across all students", ""},
}

var collegeTemplateColumns = []string{
	"name", "code", "email", "institute", "contactNumber", "address.line1",
	"address.line2", "address.city", "address.state", "address.country",
	"address.pincode", "website", "type", "password", "status",
}

var collegeTemplateRows = [][]interface{}{
	{
		"College of Engineering", "COE", "coe@example.edu", "", "+91-9999999999",
		"123 University Road", "", "Mumbai", "Maharashtra", "India", "400001",
		"https://coe.example.edu", "Engineering College", "", "Active",
	},
	{
		"Medical Sciences College", "MSC", "msc@example.edu", "", "+91-8888888888",
		"45 Health Ave", "", "Pune", "Maharashtra", "India", "500001",
		"https://msc.example.edu", "Medical College", "", "Active",
	},
}

var collegeTemplateInstructions = [][]interface{}{
	{"Field", "Description", "Notes"},
	{"REQUIRED FIELDS", "These fields must be filled", ""},
	{"name", "College name", "College of Engineering"},
	{"code", "Unique college code", "Upper-cased on import (COE)"},
	{"email", "Unique email address", "Used for login"},
	{"", "", ""},
	{"OPTIONAL FIELDS", "Can be left empty", ""},
	{"institute", "Institute ID", "Defaults to the uploading institute"},
	{"contactNumber", "College phone", ""},
	{"address.*", "Address fields", "line1, line2, city, state, country, pincode"},
	{"website", "Website URL", ""},
	{"type", "College type", "Engineering, Medical, Arts, Science, Commerce, Law, Other"},
	{"password", "Login password", "If empty, CODE@123 is used"},
	{"status", "Active or Inactive", "Defaults to Active"},
}

// StudentTemplate builds the xlsx upload template for student imports.
func StudentTemplate() (*bytes.Buffer, error) {
	return buildTemplate("Students", studentTemplateColumns, studentTemplateRows, studentTemplateInstructions)
}

// CollegeTemplate builds the xlsx upload template for college imports.
func CollegeTemplate() (*bytes.Buffer, error) {
	return buildTemplate("Colleges", collegeTemplateColumns, collegeTemplateRows, collegeTemplateInstructions)
}

func buildTemplate(sheet string, columns []string, rows, instructions [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, errors.Wrap(err, "renaming sheet")
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := writeRows(f, sheet, append([][]interface{}{header}, rows...)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Instructions"); err != nil {
		return nil, errors.Wrap(err, "adding instructions sheet")
	}
	if err := writeRows(f, "Instructions", instructions); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "computing cell name")
		}
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	return nil
}
