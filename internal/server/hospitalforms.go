package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orbitcare/console/internal/forms"
	"github.com/orbitcare/console/internal/gateway"
)

// logoField is the multipart part name carrying a new logo file.
const logoField = "logoFile"

func (s *Server) hospitalFlow(c echo.Context) *forms.HospitalFlow {
	return forms.NewHospitalFlow(s.gatewayFor(sessionFrom(c)), s.logos, s.logger)
}

func (s *Server) handleAddHospitalView(c echo.Context) error {
	flow := s.hospitalFlow(c)
	view := hospitalFormView{View: "addhospital", Form: forms.HospitalForm{}}

	departments, err := flow.Departments(c.Request().Context())
	if err != nil {
		if done, redirect := redirectUnauthenticated(c, err); done {
			return redirect
		}
		view.Error = gateway.UserMessage(err)
		view.Retry = true
		return c.JSON(http.StatusOK, view)
	}

	view.Departments = departments
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleAddHospital(c echo.Context) error {
	var form forms.HospitalForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Could not read the submitted form",
		})
	}

	logo, closeLogo, err := logoUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Could not read the attached logo",
		})
	}
	if closeLogo != nil {
		defer closeLogo()
	}

	flow := s.hospitalFlow(c)
	fieldErrs := flow.Validate(form)
	if fieldErrs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, hospitalFormView{
			View:   "addhospital",
			Form:   form,
			Errors: fieldErrs,
		})
	}

	// Validation passed; the review step must be acknowledged before
	// anything leaves the console.
	if !confirmed(c) {
		return confirmationRequired(c)
	}

	h, fieldErrs, err := flow.SubmitAdd(c.Request().Context(), form, logo)
	if fieldErrs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, hospitalFormView{
			View:   "addhospital",
			Form:   form,
			Errors: fieldErrs,
		})
	}
	if err != nil {
		return formFailure(c, err)
	}

	s.invalidateList(c)
	return c.JSON(http.StatusOK, submitResult{
		Success:  true,
		Message:  h.Name + " added successfully",
		Redirect: "/hospital",
	})
}

func (s *Server) handleEditHospitalView(c echo.Context) error {
	flow := s.hospitalFlow(c)
	form, departments, err := flow.LoadEdit(c.Request().Context(), c.Param("id"))
	if err != nil {
		if done, redirect := redirectUnauthenticated(c, err); done {
			return redirect
		}
		return c.JSON(http.StatusOK, hospitalFormView{
			View:  "edithospital",
			Error: gateway.UserMessage(err),
			Retry: true,
		})
	}

	return c.JSON(http.StatusOK, hospitalFormView{
		View:        "edithospital",
		Departments: departments,
		Form:        form,
	})
}

func (s *Server) handleEditHospital(c echo.Context) error {
	var form forms.HospitalEditForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Could not read the submitted form",
		})
	}

	logo, closeLogo, err := logoUpload(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Could not read the attached logo",
		})
	}
	if closeLogo != nil {
		defer closeLogo()
	}

	flow := s.hospitalFlow(c)
	id := c.Param("id")
	h, fieldErrs, err := flow.SubmitEdit(c.Request().Context(), id, form, logo)
	if fieldErrs.Any() {
		return c.JSON(http.StatusUnprocessableEntity, hospitalFormView{
			View:   "edithospital",
			Form:   form,
			Errors: fieldErrs,
		})
	}
	if err != nil {
		return formFailure(c, err)
	}

	s.invalidateList(c)
	return c.JSON(http.StatusOK, submitResult{
		Success:  true,
		Message:  h.Name + " updated successfully",
		Redirect: "/hospital",
	})
}

// logoUpload extracts an optional logo file from the multipart form.
// Absence is not an error. The returned cleanup closes the opened file
// and is non-nil whenever the upload is.
func logoUpload(c echo.Context) (*forms.Upload, func(), error) {
	fh, err := c.FormFile(logoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	upload := &forms.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     f,
	}
	return upload, func() { f.Close() }, nil
}

// invalidateList forces the hospital grid to refetch on its next render
// after a successful mutation.
func (s *Server) invalidateList(c echo.Context) {
	id := sessionIDFrom(c)
	s.mu.Lock()
	l, ok := s.lists[id]
	s.mu.Unlock()
	if ok {
		l.mu.Lock()
		l.loaded = false
		l.mu.Unlock()
	}
}
