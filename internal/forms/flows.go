package forms

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orbitcare/console/internal/gateway"
	"github.com/orbitcare/console/internal/platform/blobstore"
	"github.com/orbitcare/console/internal/session"
)

// LoginGateway is what the login flow needs from the remote gateway.
type LoginGateway interface {
	Login(ctx context.Context, email, password string) (*gateway.LoginResult, error)
}

// HospitalGateway is what the hospital flows need from the remote gateway.
type HospitalGateway interface {
	CreateHospital(ctx context.Context, req gateway.CreateHospitalRequest) (*gateway.Hospital, error)
	UpdateHospital(ctx context.Context, id string, req gateway.UpdateHospitalRequest) (*gateway.Hospital, error)
	GetHospital(ctx context.Context, id string) (*gateway.Hospital, error)
	ListDepartments(ctx context.Context) ([]gateway.Department, error)
}

// LoginFlow collects credentials and establishes the session.
type LoginFlow struct {
	gw       LoginGateway
	validate *Validator
}

// NewLoginFlow builds the login flow over gw.
func NewLoginFlow(gw LoginGateway) *LoginFlow {
	return &LoginFlow{gw: gw, validate: NewValidator()}
}

// Submit validates the draft and, when clean, exchanges it for a token.
// On success the session is populated; on any failure it is left exactly
// as it was. Validation failures return field errors and never reach the
// network.
func (f *LoginFlow) Submit(ctx context.Context, form LoginForm, sess *session.Session) (FieldErrors, error) {
	if fieldErrs := f.validate.Check(form); fieldErrs.Any() {
		return fieldErrs, nil
	}

	res, err := f.gw.Login(ctx, form.Email, form.Password)
	if err != nil {
		return nil, err
	}

	sess.Set(res.Token, session.UserMeta{
		DisplayName: res.DisplayName,
		Role:        session.Role(res.Role),
	})
	return nil, nil
}

// HospitalFlow drives the add- and edit-hospital forms.
type HospitalFlow struct {
	gw       HospitalGateway
	logos    blobstore.ObjectStore
	validate *Validator
	logger   zerolog.Logger
}

// NewHospitalFlow builds the hospital form flows. logos may be nil when
// no object store is configured; submissions with a logo then fail with
// a descriptive error instead of silently dropping the file.
func NewHospitalFlow(gw HospitalGateway, logos blobstore.ObjectStore, logger zerolog.Logger) *HospitalFlow {
	return &HospitalFlow{gw: gw, logos: logos, validate: NewValidator(), logger: logger}
}

// Departments fetches the department reference data for a form session.
func (f *HospitalFlow) Departments(ctx context.Context) ([]gateway.Department, error) {
	return f.gw.ListDepartments(ctx)
}

// Validate checks a draft without submitting it. The add flow runs this
// before showing the review step so a bad draft never reaches it.
func (f *HospitalFlow) Validate(form any) FieldErrors {
	return f.validate.Check(form)
}

// SubmitAdd validates and submits the add-hospital draft. Field errors
// block submission locally. A logo, when attached, is uploaded first and
// its failure aborts the whole submission. The draft is never mutated, so
// a failed submission can be retried as-is.
func (f *HospitalFlow) SubmitAdd(ctx context.Context, form HospitalForm, logo *Upload) (*gateway.Hospital, FieldErrors, error) {
	if fieldErrs := f.validate.Check(form); fieldErrs.Any() {
		return nil, fieldErrs, nil
	}

	logoURL, err := f.uploadLogo(ctx, logo)
	if err != nil {
		return nil, nil, err
	}

	req := gateway.CreateHospitalRequest{
		Name:        form.Name,
		Description: form.Description,
		LogoURL:     logoURL,
		Address: gateway.Address{
			Line1:   form.AddressLine1,
			Line2:   form.AddressLine2,
			City:    form.City,
			State:   form.State,
			Pincode: form.Pincode,
		},
		Departments: form.Departments,
		POC: gateway.POC{
			Name:  form.POCName,
			Phone: form.POCPhone,
			Email: form.POCEmail,
		},
	}

	h, err := f.gw.CreateHospital(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	f.logger.Info().Str("hospital_id", h.ID).Str("name", h.Name).Msg("hospital onboarded")
	return h, nil, nil
}

// LoadEdit prefills the edit draft from the stored record and fetches the
// department reference data for display.
func (f *HospitalFlow) LoadEdit(ctx context.Context, id string) (*HospitalEditForm, []gateway.Department, error) {
	h, err := f.gw.GetHospital(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	departments, err := f.gw.ListDepartments(ctx)
	if err != nil {
		return nil, nil, err
	}

	form := &HospitalEditForm{
		Name:         h.Name,
		Description:  h.Description,
		AddressLine1: h.Address.Line1,
		AddressLine2: h.Address.Line2,
		City:         h.Address.City,
		State:        h.Address.State,
		Pincode:      h.Address.Pincode,
		DoctorCount:  h.DoctorCount,
		Suspended:    h.Suspended,
		LogoURL:      h.LogoURL,
	}
	return form, departments, nil
}

// SubmitEdit validates and submits the edit draft. A newly attached logo
// replaces the stored one; otherwise the existing URL is kept.
func (f *HospitalFlow) SubmitEdit(ctx context.Context, id string, form HospitalEditForm, logo *Upload) (*gateway.Hospital, FieldErrors, error) {
	if fieldErrs := f.validate.Check(form); fieldErrs.Any() {
		return nil, fieldErrs, nil
	}

	logoURL := form.LogoURL
	if logo != nil {
		uploaded, err := f.uploadLogo(ctx, logo)
		if err != nil {
			return nil, nil, err
		}
		logoURL = uploaded
	}

	req := gateway.UpdateHospitalRequest{
		Name:        form.Name,
		Description: form.Description,
		LogoURL:     logoURL,
		Address: gateway.Address{
			Line1:   form.AddressLine1,
			Line2:   form.AddressLine2,
			City:    form.City,
			State:   form.State,
			Pincode: form.Pincode,
		},
		Suspended:   form.Suspended,
		DoctorCount: form.DoctorCount,
	}

	h, err := f.gw.UpdateHospital(ctx, id, req)
	if err != nil {
		return nil, nil, err
	}

	f.logger.Info().Str("hospital_id", id).Msg("hospital updated")
	return h, nil, nil
}

func (f *HospitalFlow) uploadLogo(ctx context.Context, logo *Upload) (string, error) {
	if logo == nil {
		return "", nil
	}
	if f.logos == nil {
		return "", fmt.Errorf("logo upload failed: no object store configured")
	}
	url, err := f.logos.Upload(ctx, logo.FileName, logo.ContentType, logo.Content)
	if err != nil {
		return "", fmt.Errorf("logo upload failed: %w", err)
	}
	return url, nil
}
