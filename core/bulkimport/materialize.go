package bulkimport

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
)

// Caller carries the uploading actor's linkage, injected by the caller and
// never derived from the file.
type Caller struct {
	ActorID    string
	ActorEmail string

	// student imports: the uploading faculty's department and identity
	Department  string
	Coordinator string

	// college imports: the uploading institute's identity
	Institute string
}

func parseDate(val string) (time.Time, error) {
	return time.Parse("2006-01-02", val)
}

// splitList coerces a comma-separated free-text cell into elements, trimming
// whitespace and dropping empties.
func splitList(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// addrValue reads an address field, accepting both the documented
// "address.line1" header style and the bare "line1" style older templates
// used.
func addrValue(row RawRow, field string) string {
	if row.Has("address." + field) {
		return row.Value("address." + field)
	}
	return row.Value(field)
}

func rowAddress(row RawRow) student.Address {
	return student.Address{
		Line1:   addrValue(row, "line1"),
		Line2:   addrValue(row, "line2"),
		City:    addrValue(row, "city"),
		State:   addrValue(row, "state"),
		Country: addrValue(row, "country"),
		Pincode: addrValue(row, "pincode"),
	}
}

// materializeStudent turns a valid, non-duplicate row into a persistable
// Student. The returned plaintext credential exists only for the notification
// step; it is never stored or logged.
func (imp *Importer) materializeStudent(row RawRow, caller Caller) (student.Student, string, error) {
	now := time.Now().UTC()
	std := student.Student{
		Name: student.Name{
			First: row.Value("name.first"),
			Last:  row.Value("name.last"),
		},
		Email:          core.CleanString(row.Value("email"), true /* lower */),
		StudentID:      row.Value("studentid"),
		Department:     caller.Department,
		Coordinator:    caller.Coordinator,
		ContactNumber:  row.Value("contactnumber"),
		Address:        rowAddress(row),
		Gender:         row.Value("gender"),
		EnrollmentYear: now.Year(),
		Batch:          row.Value("batch"),
		Skills:         student.Skills{Technical: splitList(row.Value("skills"))},
		Status:         row.Value("status"),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if row.Has("dob") {
		dob, err := parseDate(row.Value("dob"))
		if err != nil {
			return student.Student{}, "", errors.Wrap(err, "parsing dob")
		}
		std.DOB = dob
	}
	if row.Has("enrollmentyear") {
		year, err := strconv.Atoi(row.Value("enrollmentyear"))
		if err != nil {
			return student.Student{}, "", errors.Wrap(err, "parsing enrollmentyear")
		}
		std.EnrollmentYear = year
	}
	if row.Has("gpa") {
		gpa, err := strconv.ParseFloat(row.Value("gpa"), 64)
		if err != nil {
			return student.Student{}, "", errors.Wrap(err, "parsing gpa")
		}
		std.GPA = &gpa
	}
	if row.Has("attendance") {
		att, err := strconv.ParseFloat(row.Value("attendance"), 64)
		if err != nil {
			return student.Student{}, "", errors.Wrap(err, "parsing attendance")
		}
		std.Attendance = &att
	}
	if std.Batch == "" {
		std.Batch = now.Format("2006")
	}
	if std.Status == "" {
		std.Status = student.StatusActive
	}

	plain := row.Value("password")
	if plain == "" {
		plain = imp.credFn(std.StudentID)
	}
	if err := std.SetPassword(plain, imp.bcryptCost); err != nil {
		return student.Student{}, "", errors.Wrap(err, "hashing credential")
	}
	return std, plain, nil
}

// materializeCollege turns a valid, non-duplicate row into a persistable
// College. Institute comes from the row when present, else from the caller.
func (imp *Importer) materializeCollege(row RawRow, caller Caller) (college.College, string, error) {
	now := time.Now().UTC()
	col := college.College{
		Name:          row.Value("name"),
		Code:          strings.ToUpper(row.Value("code")),
		Email:         core.CleanString(row.Value("email"), true /* lower */),
		Institute:     row.Value("institute"),
		ContactNumber: row.Value("contactnumber"),
		Address:       rowAddress(row),
		Website:       row.Value("website"),
		Type:          row.Value("type"),
		Status:        row.Value("status"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if col.Institute == "" {
		col.Institute = caller.Institute
	}
	if col.Institute == "" {
		return college.College{}, "", errors.New("missing institute: not in row and caller is not an institute")
	}
	if col.Type == "" {
		col.Type = college.TypeOther
	}
	if col.Status == "" {
		col.Status = college.StatusActive
	}

	plain := row.Value("password")
	if plain == "" {
		plain = imp.credFn(col.Code)
	}
	if err := col.SetPassword(plain, imp.bcryptCost); err != nil {
		return college.College{}, "", errors.Wrap(err, "hashing credential")
	}
	return col, plain, nil
}
