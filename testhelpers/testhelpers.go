// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"

	"quotedesk/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

func saveRecord(t *testing.T, app core.App, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}

	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test %s record: %v", collection, err)
	}
	return record
}

// CreateTestCompany creates a company record with the given name and returns it.
func CreateTestCompany(t *testing.T, app core.App, name string) *core.Record {
	t.Helper()
	return saveRecord(t, app, "companies", map[string]any{
		"name":          name,
		"tax_id":        "900123456-7",
		"address":       "Calle 10 # 5-20",
		"phone":         "3001234567",
		"contact_email": "contacto@example.com",
		"color_primary": "#1F6FEB",
	})
}

// CreateTestUser creates a company user with a bcrypt hash of password.
// A minimum cost hash keeps tests fast.
func CreateTestUser(t *testing.T, app core.App, companyID, email, password string) *core.Record {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return saveRecord(t, app, "company_users", map[string]any{
		"name":          "Test User",
		"email":         email,
		"password_hash": string(hash),
		"company":       companyID,
		"role":          "admin",
	})
}

// CreateTestProduct creates a product in the company catalog.
func CreateTestProduct(t *testing.T, app core.App, companyID, name string, price float64) *core.Record {
	t.Helper()
	return saveRecord(t, app, "products", map[string]any{
		"company":     companyID,
		"name":        name,
		"price":       price,
		"description": name + " description",
	})
}

// CreateTestClient creates a client in the company directory.
func CreateTestClient(t *testing.T, app core.App, companyID, name string) *core.Record {
	t.Helper()
	return saveRecord(t, app, "clients", map[string]any{
		"company": companyID,
		"name":    name,
		"tax_id":  "1020304050",
		"phone":   "3109876543",
		"email":   "cliente@example.com",
	})
}

// CreateTestQuotation stores a quotation record directly, bypassing number
// allocation. items is stored as given.
func CreateTestQuotation(t *testing.T, app core.App, companyID string, number int, clientName string, total float64) *core.Record {
	t.Helper()
	issue := time.Now().UTC().Truncate(24 * time.Hour)
	return saveRecord(t, app, "quotations", map[string]any{
		"company":          companyID,
		"quotation_number": number,
		"issue_date":       issue,
		"valid_until":      issue.AddDate(0, 0, 15),
		"client_name":      clientName,
		"items": []map[string]string{
			{"quantity": "1", "description": "Servicio", "unit": "1000", "discountUnit": "0", "total": "1000"},
		},
		"subtotal": total,
		"discount": 0,
		"total":    total,
	})
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks that the response has an HX-Redirect header with the expected URL.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()

	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
