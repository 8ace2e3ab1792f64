package gateway

import "time"

// Address is a hospital's postal address as the upstream API serializes it.
type Address struct {
	Line1   string `json:"addressLine1"`
	Line2   string `json:"addressLine2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Location is an optional geographic point for a hospital.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hospital is one onboarded hospital in the network.
type Hospital struct {
	ID            string     `json:"id"`
	OHID          string     `json:"OHID,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	LogoURL       string     `json:"logo"`
	Address       Address    `json:"address"`
	Location      *Location  `json:"location,omitempty"`
	Suspended     bool       `json:"suspended"`
	DepartmentIDs []string   `json:"departments,omitempty"`
	DoctorCount   int        `json:"noOfDoctors"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Department is read-only reference data for the hospital forms.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Patient is one row of the read-only patient listing.
type Patient struct {
	ID                 string `json:"id"`
	OPID               string `json:"OPID"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Age                int    `json:"age"`
	Gender             string `json:"gender"`
	Phone              string `json:"phone"`
	LastVisit          string `json:"lastVisit,omitempty"`
	PrimaryHealthIssue string `json:"primaryHealthIssue,omitempty"`
	TotalAppointments  int    `json:"totalAppointments,omitempty"`
}

// Pagination is the optional paging block of the upstream envelope.
type Pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// POC is the hospital's onboarding point of contact.
type POC struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CreateHospitalRequest is the payload for onboarding a hospital.
type CreateHospitalRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	LogoURL     string   `json:"logo,omitempty"`
	Address     Address  `json:"address"`
	Departments []string `json:"departments"`
	POC         POC      `json:"poc"`
}

// UpdateHospitalRequest is the payload for the hospital edit flow.
type UpdateHospitalRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	LogoURL     string  `json:"logo,omitempty"`
	Address     Address `json:"address"`
	Suspended   bool    `json:"suspended"`
	DoctorCount int     `json:"noOfDoctors"`
}

// LoginResult carries the token and user metadata of a successful login.
type LoginResult struct {
	Token       string
	DisplayName string
	Role        string
}
