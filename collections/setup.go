package collections

import (
	"log/slog"

	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the companies, company_users,
// clients, products, quotations and quotation_counters collections exist.
func Setup(app core.App) {
	companies := ensureCollection(app, "companies", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "tax_id"})
		c.Fields.Add(&core.TextField{Name: "logo_url"})
		c.Fields.Add(&core.TextField{Name: "color_primary"})
		c.Fields.Add(&core.TextField{Name: "color_secondary"})
		c.Fields.Add(&core.BoolField{Name: "includes_vat"})
		c.Fields.Add(&core.NumberField{Name: "vat_percent"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "contact_email"})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "company_users", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "email", Required: true})
		c.Fields.Add(&core.TextField{Name: "password_hash", Required: true, Hidden: true})
		c.Fields.Add(companyRelation(companies.Id))
		c.Fields.Add(&core.SelectField{
			Name:      "role",
			Required:  true,
			Values:    []string{"admin", "member"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.AddIndex("idx_company_users_email", true, "email", "")
	})

	ensureCollection(app, "clients", func(c *core.Collection) {
		c.Fields.Add(companyRelation(companies.Id))
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "tax_id"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "phone"})
		c.Fields.Add(&core.TextField{Name: "email"})
		c.AddIndex("idx_clients_company_name", true, "company, name", "")
	})

	ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(companyRelation(companies.Id))
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "price"})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.AddIndex("idx_products_company_name", true, "company, name", "")
	})

	ensureCollection(app, "quotations", func(c *core.Collection) {
		c.Fields.Add(companyRelation(companies.Id))
		c.Fields.Add(&core.NumberField{Name: "quotation_number", Required: true, OnlyInt: true})
		c.Fields.Add(&core.DateField{Name: "issue_date", Required: true})
		c.Fields.Add(&core.DateField{Name: "valid_until", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_tax_id"})
		c.Fields.Add(&core.TextField{Name: "client_address"})
		c.Fields.Add(&core.TextField{Name: "client_phone"})
		c.Fields.Add(&core.TextField{Name: "client_email"})
		c.Fields.Add(&core.JSONField{Name: "items"})
		c.Fields.Add(&core.NumberField{Name: "subtotal"})
		c.Fields.Add(&core.NumberField{Name: "discount"})
		c.Fields.Add(&core.NumberField{Name: "total"})
		c.Fields.Add(&core.TextField{Name: "subtotal_exact"})
		c.Fields.Add(&core.TextField{Name: "discount_exact"})
		c.Fields.Add(&core.TextField{Name: "total_exact"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_quotations_company_number", true, "company, quotation_number", "")
	})

	ensureCollection(app, "quotation_counters", func(c *core.Collection) {
		c.Fields.Add(companyRelation(companies.Id))
		c.Fields.Add(&core.NumberField{Name: "last_number", OnlyInt: true})
		c.AddIndex("idx_quotation_counters_company", true, "company", "")
	})
}

// companyRelation is the tenant link shared by every company-scoped collection.
func companyRelation(companiesID string) *core.RelationField {
	return &core.RelationField{
		Name:          "company",
		Required:      true,
		CollectionId:  companiesID,
		CascadeDelete: true,
		MaxSelect:     1,
	}
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		slog.Debug("collections: collection already exists, skipping creation", "name", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		slog.Error("collections: failed to create collection", "name", name, "error", err)
		panic(err)
	}

	slog.Info("collections: created collection", "name", name, "id", collection.Id)
	return collection
}
