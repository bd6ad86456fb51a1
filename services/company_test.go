package services

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"quotedesk/testhelpers"
)

func TestUpdateCompany(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	company := testhelpers.CreateTestCompany(t, app, "Acme")

	rec, err := UpdateCompany(app, company.Id, Company{
		Name:         " Acme SAS ",
		TaxID:        "900",
		ColorPrimary: "#112233",
		IncludesVAT:  true,
		VATPercent:   19,
		Email:        "ventas@acme.co",
	})
	if err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}
	got := CompanyFromRecord(rec)
	if got.Name != "Acme SAS" || got.ColorPrimary != "#112233" || !got.IncludesVAT || got.VATPercent != 19 || got.Email != "ventas@acme.co" {
		t.Errorf("company = %+v", got)
	}
}

func TestUpdateCompany_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	company := testhelpers.CreateTestCompany(t, app, "Acme")

	tests := []struct {
		name  string
		in    Company
		field string
	}{
		{"missing name", Company{}, "name"},
		{"bad color", Company{Name: "A", ColorPrimary: "blue"}, "colorPrimary"},
		{"vat above 100", Company{Name: "A", VATPercent: 120}, "vatPercent"},
		{"bad email", Company{Name: "A", Email: "x"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UpdateCompany(app, company.Id, tt.in)
			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("err = %v, want validation.Errors", err)
			}
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("errors %v missing %q", errs, tt.field)
			}
		})
	}
}

func TestFindCompany_Missing(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := FindCompany(app, "missing"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}
