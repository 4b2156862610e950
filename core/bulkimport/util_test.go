package bulkimport

import (
	"os"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimulabs/tuzo/core"
	emailsvc "github.com/elimulabs/tuzo/services/email"
	logsvc "github.com/elimulabs/tuzo/services/logger"
	inmemdb "github.com/elimulabs/tuzo/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(logsvc.NewStdLogger(nil))
	os.Exit(m.Run())
}

var studentHeader = []interface{}{
	"name.first", "name.last", "email", "studentID", "dob", "gender",
	"contactNumber", "address.line1", "enrollmentYear", "batch", "gpa",
	"attendance", "skills", "password", "status",
}

var collegeHeader = []interface{}{
	"name", "code", "email", "institute", "contactNumber", "website", "type", "password", "status",
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

func testConfig() *core.Config {
	return &core.Config{
		AppName:                 "Tuzo",
		FrontendBaseURL:         "http://localhost:3000",
		BcryptCost:              bcrypt.MinCost,
		DefaultCredentialSuffix: "@123",
	}
}

type testDeps struct {
	importer *Importer
	mailer   *emailsvc.MailerMock
	db       *inmemdb.DB
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()
	db := inmemdb.Open()
	mailer := emailsvc.NewMailerMock()
	importer := NewImporter(
		inmemdb.NewStudentRepository(db),
		inmemdb.NewCollegeRepository(db),
		mailer,
		testLogger{t},
		testConfig(),
	)
	return testDeps{importer: importer, mailer: mailer, db: db}
}

// buildWorkbook writes rows into the first sheet of a fresh workbook and
// returns the serialized file.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("buildWorkbook() failed: %v", err)
		}
		if err = f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("buildWorkbook() failed: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("buildWorkbook() failed: %v", err)
	}
	return buf.Bytes()
}

// studentRow pads values out to the student header width.
func studentRow(values ...interface{}) []interface{} {
	row := make([]interface{}, len(studentHeader))
	copy(row, values)
	return row
}
