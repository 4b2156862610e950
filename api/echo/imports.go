package echoapi

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
	"github.com/elimulabs/tuzo/core/bulkimport"
)

const (
	// uploads above this size are rejected before the workbook is decoded
	maxUploadBytes = 5 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type importApi struct {
	importer *bulkimport.Importer
}

func registerImportAPI(g *echo.Group, importer *bulkimport.Importer) {
	api := importApi{importer: importer}

	// 6M at the transport layer leaves room for multipart overhead; the
	// handler enforces the 5MB cap on the file itself
	ig := g.Group("/imports", middleware.BodyLimit("6M"))
	ig.POST("/students", api.importStudents)
	ig.GET("/students/template", api.studentTemplate)
	ig.POST("/colleges", api.importColleges)
	ig.GET("/colleges/template", api.collegeTemplate)
}

// Handlers

func (api *importApi) importStudents(ctx echo.Context) error {
	buf, err := readSpreadsheet(ctx)
	if err != nil {
		return err
	}

	summary, err := api.importer.Run(ctx.Request().Context(), buf, bulkimport.KindStudent, callerFromRequest(ctx))
	if err != nil {
		return errors.Wrap(err, "running student import")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *importApi) importColleges(ctx echo.Context) error {
	buf, err := readSpreadsheet(ctx)
	if err != nil {
		return err
	}

	summary, err := api.importer.Run(ctx.Request().Context(), buf, bulkimport.KindCollege, callerFromRequest(ctx))
	if err != nil {
		return errors.Wrap(err, "running college import")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *importApi) studentTemplate(ctx echo.Context) error {
	buf, err := bulkimport.StudentTemplate()
	if err != nil {
		return errors.Wrap(err, "building student template")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="students-template.xlsx"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (api *importApi) collegeTemplate(ctx echo.Context) error {
	buf, err := bulkimport.CollegeTemplate()
	if err != nil {
		return errors.Wrap(err, "building college template")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="colleges-template.xlsx"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// readSpreadsheet pulls the uploaded workbook out of the multipart form and
// enforces the upload constraints before any decoding happens.
func readSpreadsheet(ctx echo.Context) ([]byte, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "a spreadsheet file is required"})
	}
	if fh.Size > maxUploadBytes {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file exceeds the 5MB limit"})
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx", ".xls":
	default:
		return nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "only .xlsx and .xls files are accepted"})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	buf, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading uploaded file")
	}
	if len(buf) > maxUploadBytes {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "file", Error: "file exceeds the 5MB limit"})
	}
	return buf, nil
}

// callerFromRequest resolves the acting uploader. Identity arrives resolved in
// headers; there is no auth middleware on this surface yet.
func callerFromRequest(ctx echo.Context) bulkimport.Caller {
	h := ctx.Request().Header
	return bulkimport.Caller{
		ActorID:     h.Get("X-Actor-Id"),
		ActorEmail:  h.Get("X-Actor-Email"),
		Department:  h.Get("X-Actor-Department"),
		Coordinator: h.Get("X-Actor-Id"),
		Institute:   h.Get("X-Actor-Institute"),
	}
}
