package model

import (
	"strings"
	"time"
)

// Enquiry represents a prospective-client submission from the enquiry form.
// ID and CreatedAt are assigned by the store on insert.
type Enquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	WebsiteType string    `json:"website_type"`
	Message     *string   `json:"message"` // nil when the visitor left it blank
	CreatedAt   time.Time `json:"created_at"`
}

// HasMessage reports whether the enquiry carries a non-blank message.
func (e *Enquiry) HasMessage() bool {
	return e.Message != nil && strings.TrimSpace(*e.Message) != ""
}

// WebsiteTypeOther is the catch-all option of the website type select.
const WebsiteTypeOther = "Other"

// WebsiteTypes lists the options offered by the enquiry form, in display order.
var WebsiteTypes = []string{
	"E-commerce Website",
	"Business/Corporate Website",
	"Portfolio Website",
	"Blog/News Website",
	"Landing Page",
	"Web Application",
	WebsiteTypeOther,
}

// IsKnownWebsiteType reports whether t is one of WebsiteTypes.
func IsKnownWebsiteType(t string) bool {
	for _, wt := range WebsiteTypes {
		if wt == t {
			return true
		}
	}
	return false
}

// EnquiryDraft is the user-entered form state before submission.
type EnquiryDraft struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	WebsiteType string `json:"website_type"`
	Message     string `json:"message"`
}

// Validate applies the form's required-field rules. The email check only
// mirrors what an <input type="email"> control enforces.
func (d EnquiryDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Code: "name_required"}
	}
	if strings.TrimSpace(d.Email) == "" {
		return &ValidationError{Field: "email", Code: "email_required"}
	}
	if !looksLikeEmail(strings.TrimSpace(d.Email)) {
		return &ValidationError{Field: "email", Code: "email_invalid"}
	}
	if strings.TrimSpace(d.WebsiteType) == "" {
		return &ValidationError{Field: "website_type", Code: "website_type_required"}
	}
	if !IsKnownWebsiteType(d.WebsiteType) {
		return &ValidationError{Field: "website_type", Code: "website_type_invalid"}
	}
	return nil
}

// ToEnquiry builds the record to insert. Fields are stored as submitted;
// trimming only feeds the required checks in Validate. A message that is
// empty or only whitespace becomes nil.
func (d EnquiryDraft) ToEnquiry() *Enquiry {
	e := &Enquiry{
		Name:        d.Name,
		Email:       d.Email,
		WebsiteType: d.WebsiteType,
	}
	if strings.TrimSpace(d.Message) != "" {
		msg := d.Message
		e.Message = &msg
	}
	return e
}

func looksLikeEmail(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1
}
