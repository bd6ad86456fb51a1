package collections

import (
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/auth"
)

// Demo login created by Seed.
const (
	DemoCompanyName = "Estampados La 14"
	DemoAdminEmail  = "admin@demo.co"
	DemoPassword    = "demo1234"
)

type productDef struct {
	name        string
	price       float64
	description string
}

type clientDef struct {
	name    string
	taxID   string
	address string
	phone   string
	email   string
}

var demoProducts = []productDef{
	{"Camiseta estampada", 25000, "Camiseta de algodón con estampado a una tinta"},
	{"Gorra bordada", 18000, "Gorra ajustable con logo bordado"},
	{"Mug personalizado", 15000, "Mug de cerámica 11 oz, sublimado"},
	{"Buso con capota", 65000, "Buso perchado con estampado frontal"},
	{"Llavero acrílico", 4500, "Llavero acrílico impreso a full color"},
}

var demoClients = []clientDef{
	{"Colegio San José", "890123456-1", "Carrera 15 # 20-30", "6012345678", "compras@sanjose.edu.co"},
	{"Ana María Gómez", "1020304050", "Calle 45 # 12-08", "3001112233", "ana.gomez@example.com"},
}

// Seed creates a demo company with an admin user, a product catalog and a
// client directory. It returns early when any company already exists.
func Seed(app core.App) error {
	companiesCol, err := app.FindCollectionByNameOrId("companies")
	if err != nil {
		return fmt.Errorf("seed: could not find companies collection: %w", err)
	}
	existing, err := app.CountRecords(companiesCol)
	if err != nil {
		return fmt.Errorf("seed: could not count companies: %w", err)
	}
	if existing > 0 {
		return nil
	}

	slog.Info("seed: no companies found, inserting demo data")

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	return app.RunInTransaction(func(txApp core.App) error {
		company := core.NewRecord(companiesCol)
		company.Set("name", DemoCompanyName)
		company.Set("tax_id", "900555123-4")
		company.Set("address", "Avenida 6N # 23-45, Cali")
		company.Set("phone", "6024567890")
		company.Set("contact_email", "ventas@demo.co")
		company.Set("color_primary", "#1F6FEB")
		company.Set("color_secondary", "#F5A623")
		company.Set("description", "Estampados y productos promocionales")
		if err := txApp.Save(company); err != nil {
			return fmt.Errorf("seed: company: %w", err)
		}

		if err := saveNew(txApp, "company_users", map[string]any{
			"name":          "Administrador",
			"email":         DemoAdminEmail,
			"password_hash": hash,
			"company":       company.Id,
			"role":          "admin",
		}); err != nil {
			return err
		}

		for _, p := range demoProducts {
			if err := saveNew(txApp, "products", map[string]any{
				"company":     company.Id,
				"name":        p.name,
				"price":       p.price,
				"description": p.description,
			}); err != nil {
				return err
			}
		}

		for _, c := range demoClients {
			if err := saveNew(txApp, "clients", map[string]any{
				"company": company.Id,
				"name":    c.name,
				"tax_id":  c.taxID,
				"address": c.address,
				"phone":   c.phone,
				"email":   c.email,
			}); err != nil {
				return err
			}
		}

		slog.Info("seed: demo data inserted", "company", company.Id, "login", DemoAdminEmail)
		return nil
	})
}

func saveNew(app core.App, collection string, fields map[string]any) error {
	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		return fmt.Errorf("seed: could not find %s collection: %w", collection, err)
	}
	r := core.NewRecord(col)
	for k, v := range fields {
		r.Set(k, v)
	}
	if err := app.Save(r); err != nil {
		return fmt.Errorf("seed: %s: %w", collection, err)
	}
	return nil
}
