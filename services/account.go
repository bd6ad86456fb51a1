package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/auth"
)

// RegisterInput creates a company together with its first admin user.
type RegisterInput struct {
	CompanyName string `json:"companyName"`
	TaxID       string `json:"taxId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CompanyName, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(auth.MinPasswordLength, 0)),
	)
}

// Account is the public view of a company user.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

func AccountFromRecord(rec *core.Record) Account {
	return Account{
		ID:        rec.Id,
		Name:      rec.GetString("name"),
		Email:     rec.GetString("email"),
		Role:      rec.GetString("role"),
		CompanyID: rec.GetString("company"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// findUserByEmail returns nil, nil when no user has the email.
func findUserByEmail(app core.App, email string) (*core.Record, error) {
	rec, err := app.FindFirstRecordByFilter("company_users", "email = {:email}", dbx.Params{"email": email})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// RegisterCompany creates the company and its admin user in one transaction.
func RegisterCompany(app core.App, in RegisterInput) (company, user *core.Record, err error) {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}

	existing, err := findUserByEmail(app, in.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, nil, auth.ErrEmailExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		companiesCol, err := txApp.FindCollectionByNameOrId("companies")
		if err != nil {
			return fmt.Errorf("companies collection not found: %w", err)
		}
		company = core.NewRecord(companiesCol)
		company.Set("name", in.CompanyName)
		company.Set("tax_id", strings.TrimSpace(in.TaxID))
		company.Set("contact_email", in.Email)
		if err := txApp.Save(company); err != nil {
			return fmt.Errorf("failed to save company: %w", err)
		}

		usersCol, err := txApp.FindCollectionByNameOrId("company_users")
		if err != nil {
			return fmt.Errorf("company_users collection not found: %w", err)
		}
		user = core.NewRecord(usersCol)
		user.Set("name", in.Name)
		user.Set("email", in.Email)
		user.Set("password_hash", hash)
		user.Set("company", company.Id)
		user.Set("role", "admin")
		if err := txApp.Save(user); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return company, user, nil
}

// Authenticate checks the credentials and returns the user record. Unknown
// emails and wrong passwords both yield auth.ErrInvalidCredentials.
func Authenticate(app core.App, email, password string) (*core.Record, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}
	user, err := findUserByEmail(app, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.GetString("password_hash"), password); err != nil {
		return nil, err
	}
	return user, nil
}

// FindAccount loads a user and checks it still belongs to companyID.
func FindAccount(app core.App, userID, companyID string) (*core.Record, error) {
	user, err := app.FindRecordById("company_users", userID)
	if err != nil || user.GetString("company") != companyID {
		return nil, ErrRecordNotFound
	}
	return user, nil
}
