// Package hrapi provides the HTTP client for the Crewdesk HR backend.
//
// The client is the single place where responses are classified: callers
// receive a typed error (see errors.go) and the user gets exactly one
// notification per failed request, even when the request was queued and
// replayed behind a session refresh.
package hrapi

import "time"

// Employee is the current-user profile returned by the who-am-I endpoint.
// It confirms identity and drives role-based branching; it is never
// authoritative for session validity.
type Employee struct {
	// UUID is the server-assigned employee identifier.
	UUID string `json:"uuid"`

	// Email is the employee's primary email address.
	Email string `json:"email"`

	// FirstName and LastName are the display name parts.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	// Role is the employee's platform role (e.g. "employee", "manager", "admin").
	Role string `json:"role"`

	// ManagerUUID references the employee's manager, when assigned.
	ManagerUUID string `json:"managerUuid,omitempty"`

	// Department is the employee's department name.
	Department string `json:"department,omitempty"`

	// JoinedAt is when the employee joined the company.
	JoinedAt time.Time `json:"joinedAt,omitempty"`
}

// LoginRequest carries password-login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful password login.
type LoginResponse struct {
	// Token is the bearer credential. Empty in cookie deployments where
	// the credential is set as an HTTP cookie instead.
	Token string `json:"token,omitempty"`

	// RefreshToken is the long-lived renewal credential.
	RefreshToken string `json:"refreshToken,omitempty"`

	// ExpiresAt is when Token stops being accepted.
	ExpiresAt time.Time `json:"expiresAt,omitempty"`

	// Employee is the signed-in user's profile.
	Employee *Employee `json:"employee,omitempty"`
}

// RefreshResponse is returned by the session refresh endpoint.
type RefreshResponse struct {
	Token        string    `json:"token,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
}

// TokenValidation reports which of the two credentials are still active.
type TokenValidation struct {
	TokenActive        bool `json:"tokenActive"`
	RefreshTokenActive bool `json:"refreshTokenActive"`
}

// Manager is a compact employee record listed for registration forms.
type Manager struct {
	UUID      string `json:"uuid"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// EmployeeRequest registers a new employee.
type EmployeeRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Role        string `json:"role"`
	ManagerUUID string `json:"managerUuid,omitempty"`
	Department  string `json:"department,omitempty"`
}

// FullTeam is a manager's team: the manager plus direct and indirect reports.
type FullTeam struct {
	Manager Employee   `json:"manager"`
	Members []Employee `json:"members"`
}

// EmployeePage is one page of the paginated employee listing.
type EmployeePage struct {
	Employees  []Employee `json:"employees"`
	Page       int        `json:"page"`
	Size       int        `json:"size"`
	TotalPages int        `json:"totalPages"`
	TotalCount int        `json:"totalCount"`
}

// Attendance is one attendance record for an employee.
type Attendance struct {
	UUID     string    `json:"uuid"`
	Date     string    `json:"date"`
	ClockIn  time.Time `json:"clockIn,omitempty"`
	ClockOut time.Time `json:"clockOut,omitempty"`
	Status   string    `json:"status"`
}

// Review is one quarterly performance review entry.
type Review struct {
	UUID     string `json:"uuid"`
	Quarter  string `json:"quarter"`
	Year     int    `json:"year"`
	Rating   int    `json:"rating"`
	Comments string `json:"comments,omitempty"`
	Status   string `json:"status"`
}

// Education is one education record on an employee's profile.
type Education struct {
	UUID         string `json:"uuid,omitempty"`
	EmployeeUUID string `json:"employeeUuid"`
	Degree       string `json:"degree"`
	SchoolName   string `json:"schoolName"`
	Grade        string `json:"grade,omitempty"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate,omitempty"`
}

// EmployeeSession is one device session recorded by the server.
type EmployeeSession struct {
	UUID      string    `json:"uuid"`
	Device    string    `json:"device,omitempty"`
	IP        string    `json:"ip,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp,omitempty"`
}

// ResetPasswordRequest completes the password-reset flow.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// errorResponse is the server's error payload shape.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
