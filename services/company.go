package services

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/pocketbase/core"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Company is the issuer profile printed on quotations. VAT fields are stored
// profile data only; totals never apply them.
type Company struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	TaxID          string  `json:"nit"`
	LogoURL        string  `json:"logoUrl"`
	ColorPrimary   string  `json:"colorPrimary"`
	ColorSecondary string  `json:"colorSecondary"`
	IncludesVAT    bool    `json:"includesVat"`
	VATPercent     float64 `json:"vatPercent"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Description    string  `json:"description"`
}

func CompanyFromRecord(rec *core.Record) Company {
	return Company{
		ID:             rec.Id,
		Name:           rec.GetString("name"),
		TaxID:          rec.GetString("tax_id"),
		LogoURL:        rec.GetString("logo_url"),
		ColorPrimary:   rec.GetString("color_primary"),
		ColorSecondary: rec.GetString("color_secondary"),
		IncludesVAT:    rec.GetBool("includes_vat"),
		VATPercent:     rec.GetFloat("vat_percent"),
		Address:        rec.GetString("address"),
		Phone:          rec.GetString("phone"),
		Email:          rec.GetString("contact_email"),
		Description:    rec.GetString("description"),
	}
}

func (c Company) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.LogoURL, is.URL),
		validation.Field(&c.ColorPrimary, validation.Match(hexColor).Error("must be a #RRGGBB color")),
		validation.Field(&c.ColorSecondary, validation.Match(hexColor).Error("must be a #RRGGBB color")),
		validation.Field(&c.VATPercent, validation.Min(0.0), validation.Max(100.0)),
	)
}

// FindCompany loads the company profile.
func FindCompany(app core.App, companyID string) (*core.Record, error) {
	rec, err := app.FindRecordById("companies", companyID)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// UpdateCompany replaces the editable profile fields of the company.
func UpdateCompany(app core.App, companyID string, in Company) (*core.Record, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	in.ColorPrimary = strings.TrimSpace(in.ColorPrimary)
	in.ColorSecondary = strings.TrimSpace(in.ColorSecondary)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	rec, err := FindCompany(app, companyID)
	if err != nil {
		return nil, err
	}
	rec.Set("name", in.Name)
	rec.Set("tax_id", strings.TrimSpace(in.TaxID))
	rec.Set("logo_url", in.LogoURL)
	rec.Set("color_primary", in.ColorPrimary)
	rec.Set("color_secondary", in.ColorSecondary)
	rec.Set("includes_vat", in.IncludesVAT)
	rec.Set("vat_percent", in.VATPercent)
	rec.Set("address", strings.TrimSpace(in.Address))
	rec.Set("phone", strings.TrimSpace(in.Phone))
	rec.Set("contact_email", in.Email)
	rec.Set("description", strings.TrimSpace(in.Description))
	if err := app.Save(rec); err != nil {
		return nil, fmt.Errorf("failed to save company: %w", err)
	}
	return rec, nil
}
