package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core/college"
	"github.com/elimulabs/tuzo/core/student"
)

type recordApi struct {
	students *student.Service
	colleges *college.Service
	validate *validator.Validate
}

func registerRecordAPI(g *echo.Group, students *student.Service, colleges *college.Service, validate *validator.Validate) {
	api := recordApi{
		students: students,
		colleges: colleges,
		validate: validate,
	}

	g.POST("/students", api.createStudent)
	g.GET("/students", api.queryStudents)
	g.POST("/colleges", api.createCollege)
	g.GET("/colleges", api.queryColleges)
}

// Handlers

func (api *recordApi) createStudent(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	// linkage comes from the acting faculty, never from the payload
	caller := callerFromRequest(ctx)
	data.Department = caller.Department
	data.Coordinator = caller.Coordinator

	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.students.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *recordApi) queryStudents(ctx echo.Context) error {
	students, err := api.students.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *recordApi) createCollege(ctx echo.Context) error {
	var data college.NewCollege
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCollege")
	}
	if data.Institute == "" {
		data.Institute = callerFromRequest(ctx).Institute
	}

	if err := data.Validate(api.validate); err != nil {
		return err
	}

	col, err := api.colleges.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating college")
	}
	return ctx.JSON(http.StatusCreated, col)
}

func (api *recordApi) queryColleges(ctx echo.Context) error {
	colleges, err := api.colleges.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying colleges")
	}
	if colleges == nil {
		colleges = []college.College{}
	}
	return ctx.JSON(http.StatusOK, colleges)
}
