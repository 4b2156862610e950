package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/bulkimport"
	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
	emailsvc "github.com/elimulabs/tuzo/services/email"
	logsvc "github.com/elimulabs/tuzo/services/logger"
	inmemdb "github.com/elimulabs/tuzo/storage/database/inmem"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(logsvc.NewStdLogger(nil))
	os.Exit(m.Run())
}

type serverDeps struct {
	server *Server
	mailer *emailsvc.MailerMock
	db     *inmemdb.DB
}

func newTestServer(t *testing.T) serverDeps {
	t.Helper()

	conf := &core.Config{
		TestMode:                true,
		AppName:                 "Tuzo",
		FrontendBaseURL:         "http://localhost:3000",
		BcryptCost:              bcrypt.MinCost,
		DefaultCredentialSuffix: "@123",
	}
	logger := logsvc.NewStdLogger(nil)
	db := inmemdb.Open()
	mailer := emailsvc.NewMailerMock()
	studentRepo := inmemdb.NewStudentRepository(db)
	collegeRepo := inmemdb.NewCollegeRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	college.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		StudentSvc:     student.NewService(studentRepo, mailer, logger, conf),
		CollegeSvc:     college.NewService(collegeRepo, mailer, logger, conf),
		Importer:       bulkimport.NewImporter(studentRepo, collegeRepo, mailer, logger, conf),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return serverDeps{server: server, mailer: mailer, db: db}
}

func buildStudentWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	all := append([][]interface{}{
		{"name.first", "name.last", "email", "studentID"},
	}, rows...)
	for i, row := range all {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("buildStudentWorkbook() failed: %v", err)
		}
		if err = f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("buildStudentWorkbook() failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("buildStudentWorkbook() failed: %v", err)
	}
	return buf.Bytes()
}

func newUploadRequest(t *testing.T, path, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if _, err = fw.Write(content); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req, httptest.NewRecorder()
}

func TestImportStudentsEndpoint(t *testing.T) {
	deps := newTestServer(t)

	t.Run("successful import returns the job summary", func(t *testing.T) {
		wb := buildStudentWorkbook(t,
			[]interface{}{"John", "Doe", "john@example.com", "STU001"},
			[]interface{}{"", "", "bad-email", ""},
		)
		req, rec := newUploadRequest(t, "/v1/imports/students", "students.xlsx", wb)
		req.Header.Set("X-Actor-Id", "fac-1")
		req.Header.Set("X-Actor-Department", "dep-1")
		deps.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var summary bulkimport.JobSummary
		if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
			t.Fatalf("decoding summary failed: %v", err)
		}
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Created)
		assert.Equal(t, 1, summary.Invalid)

		// linkage came from the actor headers
		std, err := inmemdb.NewStudentRepository(deps.db).GetStudentByEmail(req.Context(), "john@example.com")
		if err != nil {
			t.Fatalf("GetStudentByEmail() failed: %v", err)
		}
		assert.Equal(t, "dep-1", std.Department)
		assert.Equal(t, "fac-1", std.Coordinator)
	})

	t.Run("the summary never leaks credentials", func(t *testing.T) {
		wb := buildStudentWorkbook(t, []interface{}{"Jane", "Smith", "jane@example.com", "STU002"})
		req, rec := newUploadRequest(t, "/v1/imports/students", "students.xlsx", wb)
		deps.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "STU002@123")
	})

	t.Run("wrong file extension is rejected", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/imports/students", "students.csv", []byte("a,b,c"))
		deps.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file part is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/imports/students", nil)
		rec := httptest.NewRecorder()
		deps.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed workbook is a job abort", func(t *testing.T) {
		req, rec := newUploadRequest(t, "/v1/imports/students", "students.xlsx", []byte("junk"))
		deps.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestImportCollegesEndpoint(t *testing.T) {
	deps := newTestServer(t)

	f := excelize.NewFile()
	header := []interface{}{"name", "code", "email"}
	row := []interface{}{"College of Engineering", "coe", "coe@example.edu"}
	_ = f.SetSheetRow("Sheet1", "A1", &header)
	_ = f.SetSheetRow("Sheet1", "A2", &row)
	buf, err := f.WriteToBuffer()
	_ = f.Close()
	if err != nil {
		t.Fatalf("building workbook failed: %v", err)
	}

	req, rec := newUploadRequest(t, "/v1/imports/colleges", "colleges.xlsx", buf.Bytes())
	req.Header.Set("X-Actor-Institute", "inst-1")
	deps.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary bulkimport.JobSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decoding summary failed: %v", err)
	}
	assert.Equal(t, 1, summary.Created)

	col, err := inmemdb.NewCollegeRepository(deps.db).GetCollegeByEmail(req.Context(), "coe@example.edu")
	if err != nil {
		t.Fatalf("GetCollegeByEmail() failed: %v", err)
	}
	assert.Equal(t, "COE", col.Code)
	assert.Equal(t, "inst-1", col.Institute)
}

func TestTemplateEndpoints(t *testing.T) {
	deps := newTestServer(t)

	for _, path := range []string{"/v1/imports/students/template", "/v1/imports/colleges/template"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		deps.server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment"))
		assert.NotZero(t, rec.Body.Len())
	}
}

func TestCreateStudentEndpoint(t *testing.T) {
	deps := newTestServer(t)

	body := `{"first_name":"John","last_name":"Doe","email":"john@example.com","student_id":"STU001"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/students", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Department", "dep-1")
	rec := httptest.NewRecorder()
	deps.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "STU001@123")

	var std student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &std); err != nil {
		t.Fatalf("decoding student failed: %v", err)
	}
	assert.NotEmpty(t, std.ID)
	assert.Equal(t, "dep-1", std.Department)

	// second create on the same natural key is a validation error
	req = httptest.NewRequest(http.MethodPost, "/v1/students", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	deps.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCollegeEndpoint(t *testing.T) {
	deps := newTestServer(t)

	body := `{"name":"College of Engineering","code":"coe","email":"coe@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/colleges", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Institute", "inst-1")
	rec := httptest.NewRecorder()
	deps.server.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var col college.College
	if err := json.Unmarshal(rec.Body.Bytes(), &col); err != nil {
		t.Fatalf("decoding college failed: %v", err)
	}
	assert.Equal(t, "COE", col.Code)
	assert.Equal(t, "inst-1", col.Institute)

	// welcome email carried the derived credential
	found := false
	for _, msg := range deps.mailer.SentMessages {
		if data, ok := msg.TemplateData.(core.WelcomeEmailData); ok && data.Email == "coe@example.edu" {
			found = true
			assert.Equal(t, "COE@123", data.Password)
		}
	}
	assert.True(t, found, "no welcome email recorded for coe@example.edu")
}
