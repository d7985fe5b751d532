package hrapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Login performs a password login. Anonymous: a 401 here means bad
// credentials, not an expired session.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(withAnonymous(ctx), http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout notifies the server that the session is over. Callers treat it
// as best-effort: local state is cleared regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// WhoAmI fetches the signed-in employee's profile.
func (c *Client) WhoAmI(ctx context.Context) (*Employee, error) {
	var emp Employee
	if err := c.do(ctx, http.MethodGet, "/employee/me", nil, &emp); err != nil {
		return nil, err
	}
	return &emp, nil
}

// ValidateToken reports which of the stored credentials are still active.
func (c *Client) ValidateToken(ctx context.Context, employeeID string) (*TokenValidation, error) {
	var tv TokenValidation
	path := "/auth/validate-token?employeeId=" + url.QueryEscape(employeeID)
	if err := c.do(ctx, http.MethodPost, path, nil, &tv); err != nil {
		return nil, err
	}
	return &tv, nil
}

// ActiveManagers lists managers available for assignment during registration.
func (c *Client) ActiveManagers(ctx context.Context) ([]Manager, error) {
	var managers []Manager
	if err := c.do(ctx, http.MethodGet, "/employee/active-managers", nil, &managers); err != nil {
		return nil, err
	}
	return managers, nil
}

// AddEmployee registers a new employee (admin operation).
func (c *Client) AddEmployee(ctx context.Context, req EmployeeRequest) error {
	return c.do(ctx, http.MethodPost, "/employee/add", req, nil)
}

// FullTeam fetches a manager's full team, direct and indirect reports included.
func (c *Client) FullTeam(ctx context.Context, employeeID string) (*FullTeam, error) {
	var team FullTeam
	if err := c.do(ctx, http.MethodGet, "/employee/getFullTeam/"+url.PathEscape(employeeID), nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// EmployeesByManager lists the direct reports of a manager.
func (c *Client) EmployeesByManager(ctx context.Context, managerID string) ([]Employee, error) {
	var employees []Employee
	if err := c.do(ctx, http.MethodGet, "/employee/getByManagerId/"+url.PathEscape(managerID), nil, &employees); err != nil {
		return nil, err
	}
	return employees, nil
}

// EmployeesPage fetches one page of the employee listing (admin operation).
func (c *Client) EmployeesPage(ctx context.Context, page, size int, sortBy, sortOrder string) (*EmployeePage, error) {
	var resp EmployeePage
	path := fmt.Sprintf("/employee/getAll/pagination?page=%d&size=%d&sortBy=%s&sortOrder=%s",
		page, size, url.QueryEscape(sortBy), url.QueryEscape(sortOrder))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AttendanceList fetches an employee's attendance records.
func (c *Client) AttendanceList(ctx context.Context, employeeID string) ([]Attendance, error) {
	var records []Attendance
	if err := c.do(ctx, http.MethodGet, "/attendance/get/"+url.PathEscape(employeeID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ReviewsList fetches an employee's quarterly performance reviews.
func (c *Client) ReviewsList(ctx context.Context, employeeID string) ([]Review, error) {
	var reviews []Review
	if err := c.do(ctx, http.MethodGet, "/review/get/"+url.PathEscape(employeeID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// Educations fetches an employee's education records.
func (c *Client) Educations(ctx context.Context, employeeID string) ([]Education, error) {
	var records []Education
	if err := c.do(ctx, http.MethodGet, "/education/getAll/"+url.PathEscape(employeeID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AddEducation creates an education record and returns it with its
// server-assigned identifier.
func (c *Client) AddEducation(ctx context.Context, edu Education) (*Education, error) {
	var created Education
	if err := c.do(ctx, http.MethodPost, "/education/add", edu, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEducation replaces an education record.
func (c *Client) UpdateEducation(ctx context.Context, educationID string, edu Education) (*Education, error) {
	var updated Education
	if err := c.do(ctx, http.MethodPut, "/education/update/"+url.PathEscape(educationID), edu, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEducation removes an education record.
func (c *Client) DeleteEducation(ctx context.Context, educationID string) error {
	return c.do(ctx, http.MethodDelete, "/education/delete/"+url.PathEscape(educationID), nil, nil)
}

// EmployeeSessions lists the device sessions recorded for an email,
// grouped by device.
func (c *Client) EmployeeSessions(ctx context.Context, email string, active bool) (map[string][]EmployeeSession, error) {
	var sessions map[string][]EmployeeSession
	path := fmt.Sprintf("/employeeSession/get/%s?isActive=%t", url.PathEscape(email), active)
	if err := c.do(ctx, http.MethodGet, path, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteEmployeeSession revokes one device session.
func (c *Client) DeleteEmployeeSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/employeeSession/delete/"+url.PathEscape(sessionID), nil, nil)
}

// ForgotPassword starts the password-reset flow. Anonymous.
func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	return c.do(withAnonymous(ctx), http.MethodPost, "/password/forgotPassword", req, nil)
}

// ResetPassword completes the password-reset flow. Anonymous.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	return c.do(withAnonymous(ctx), http.MethodPost, "/password/resetPassword", req, nil)
}

// SendOTP requests a one-time code for the given purpose. Anonymous.
func (c *Client) SendOTP(ctx context.Context, email, otpType string) error {
	path := fmt.Sprintf("/otp/sendOtp?email=%s&type=%s", url.QueryEscape(email), url.QueryEscape(otpType))
	return c.do(withAnonymous(ctx), http.MethodPost, path, nil, nil)
}

// VerifyEmail checks that an email belongs to a registered employee. Anonymous.
func (c *Client) VerifyEmail(ctx context.Context, email string) error {
	return c.do(withAnonymous(ctx), http.MethodPost, "/auth/verify-email?email="+url.QueryEscape(email), nil, nil)
}
