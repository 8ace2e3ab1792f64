package forms

import "io"

// LoginForm is the login draft.
type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// HospitalForm is the add-hospital draft. Field-level regex rules match
// what the network accepts: a six-digit pincode without a leading zero,
// a ten-digit mobile number starting 6-9, and a syntactically valid
// point-of-contact email.
type HospitalForm struct {
	Name         string   `json:"name" form:"name" validate:"required"`
	Description  string   `json:"description" form:"description" validate:"required,max=500"`
	Departments  []string `json:"departments" form:"departments" validate:"required,min=1"`
	AddressLine1 string   `json:"addressLine1" form:"addressLine1" validate:"required"`
	AddressLine2 string   `json:"addressLine2" form:"addressLine2"`
	City         string   `json:"city" form:"city" validate:"required"`
	State        string   `json:"state" form:"state" validate:"required"`
	Pincode      string   `json:"pincode" form:"pincode" validate:"required,pincode"`
	POCName      string   `json:"pocName" form:"pocName" validate:"required"`
	POCPhone     string   `json:"pocPhone" form:"pocPhone" validate:"required,inphone"`
	POCEmail     string   `json:"pocEmail" form:"pocEmail" validate:"required,email"`
}

// HospitalEditForm is the edit-hospital draft, prefilled from the current
// record. Department selection and POC details are fixed at onboarding
// and not editable here.
type HospitalEditForm struct {
	Name         string `json:"name" form:"name" validate:"required"`
	Description  string `json:"description" form:"description" validate:"required,max=500"`
	AddressLine1 string `json:"addressLine1" form:"addressLine1" validate:"required"`
	AddressLine2 string `json:"addressLine2" form:"addressLine2"`
	City         string `json:"city" form:"city" validate:"required"`
	State        string `json:"state" form:"state" validate:"required"`
	Pincode      string `json:"pincode" form:"pincode" validate:"required,pincode"`
	DoctorCount  int    `json:"noOfDoctors" form:"noOfDoctors" validate:"min=0"`
	Suspended    bool   `json:"suspended" form:"suspended"`
	// LogoURL is the currently stored logo; kept unless a new file is
	// uploaded with the submission.
	LogoURL string `json:"logo" form:"logo"`
}

// Upload is a binary asset attached to a form submission.
type Upload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}
