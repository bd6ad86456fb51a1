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
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicateName  = errors.New("a record with this name already exists")
	ErrRecordNotFound = errors.New("record not found")
)

// Product is a catalog entry used to fill quotation lines.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// ProductInput is the create/update payload of a product.
type ProductInput struct {
	Name        string       `json:"name"`
	Price       LooseDecimal `json:"price"`
	Description string       `json:"description"`
}

func (in ProductInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Price, validation.By(nonNegativeLoose)),
	)
}

func nonNegativeLoose(value any) error {
	if v, ok := value.(LooseDecimal); ok && v.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

// Client is a saved customer whose details can prefill a quotation.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"cc_nit"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// ClientInput is the create/update payload of a client.
type ClientInput struct {
	Name    string `json:"name"`
	TaxID   string `json:"ccNit"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func (in ClientInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, is.EmailFormat),
	)
}

func ProductFromRecord(rec *core.Record) Product {
	return Product{
		ID:          rec.Id,
		Name:        rec.GetString("name"),
		Price:       rec.GetFloat("price"),
		Description: rec.GetString("description"),
	}
}

func ClientFromRecord(rec *core.Record) Client {
	return Client{
		ID:      rec.Id,
		Name:    rec.GetString("name"),
		TaxID:   rec.GetString("tax_id"),
		Address: rec.GetString("address"),
		Phone:   rec.GetString("phone"),
		Email:   rec.GetString("email"),
	}
}

// SearchLimit caps the autocomplete search results.
const SearchLimit = 10

// SearchCatalog lists up to limit company records of a catalog collection
// ("products" or "clients") whose name contains query, sorted by name.
// limit <= 0 means MaxPerPage.
func SearchCatalog(app core.App, collection, companyID, query string, limit int) ([]*core.Record, error) {
	if limit <= 0 || limit > MaxPerPage {
		limit = MaxPerPage
	}
	conds := []dbx.Expression{dbx.HashExp{"company": companyID}}
	if q := strings.TrimSpace(query); q != "" {
		conds = append(conds, dbx.Like("name", q))
	}

	var records []*core.Record
	err := app.RecordQuery(collection).
		AndWhere(dbx.And(conds...)).
		OrderBy("name ASC").
		Limit(int64(limit)).
		All(&records)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", collection, err)
	}
	return records, nil
}

// FindCatalogRecord loads a company-owned record of a catalog collection.
func FindCatalogRecord(app core.App, collection, companyID, id string) (*core.Record, error) {
	rec, err := app.FindRecordById(collection, id)
	if err != nil || rec.GetString("company") != companyID {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// findByName returns the company's record with the exact name, or nil.
func findByName(app core.App, collection, companyID, name string) (*core.Record, error) {
	rec, err := app.FindFirstRecordByFilter(
		collection,
		"company = {:company} && name = {:name}",
		dbx.Params{"company": companyID, "name": name},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// SaveProduct creates a product, or updates the one with id when id is set.
// Names are unique within a company.
func SaveProduct(app core.App, companyID, id string, in ProductInput) (*core.Record, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return saveCatalogRecord(app, "products", companyID, id, in.Name, func(rec *core.Record) {
		rec.Set("price", in.Price.Round(StoredDigits).InexactFloat64())
		rec.Set("description", in.Description)
	})
}

// SaveClient creates a client, or updates the one with id when id is set.
func SaveClient(app core.App, companyID, id string, in ClientInput) (*core.Record, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return saveCatalogRecord(app, "clients", companyID, id, in.Name, func(rec *core.Record) {
		rec.Set("tax_id", strings.TrimSpace(in.TaxID))
		rec.Set("address", strings.TrimSpace(in.Address))
		rec.Set("phone", strings.TrimSpace(in.Phone))
		rec.Set("email", in.Email)
	})
}

func saveCatalogRecord(app core.App, collection, companyID, id, name string, fill func(*core.Record)) (*core.Record, error) {
	var rec *core.Record
	if id != "" {
		existing, err := FindCatalogRecord(app, collection, companyID, id)
		if err != nil {
			return nil, err
		}
		rec = existing
	} else {
		col, err := app.FindCollectionByNameOrId(collection)
		if err != nil {
			return nil, fmt.Errorf("%s collection not found: %w", collection, err)
		}
		rec = core.NewRecord(col)
		rec.Set("company", companyID)
	}

	clash, err := findByName(app, collection, companyID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s name: %w", collection, err)
	}
	if clash != nil && clash.Id != rec.Id {
		return nil, ErrDuplicateName
	}

	rec.Set("name", name)
	fill(rec)
	if err := app.Save(rec); err != nil {
		return nil, fmt.Errorf("failed to save %s record: %w", collection, err)
	}
	return rec, nil
}

// DeleteCatalogRecord deletes a company-owned product or client.
func DeleteCatalogRecord(app core.App, collection, companyID, id string) error {
	rec, err := FindCatalogRecord(app, collection, companyID, id)
	if err != nil {
		return err
	}
	if err := app.Delete(rec); err != nil {
		return fmt.Errorf("failed to delete %s record: %w", collection, err)
	}
	return nil
}

// UpsertProduct creates or updates a product by name. It reports whether a
// new record was created.
func UpsertProduct(app core.App, companyID, name string, price decimal.Decimal, description string) (bool, error) {
	existing, err := findByName(app, "products", companyID, name)
	if err != nil {
		return false, err
	}
	id := ""
	if existing != nil {
		id = existing.Id
	}
	_, err = SaveProduct(app, companyID, id, ProductInput{
		Name:        name,
		Price:       NewLooseDecimal(price),
		Description: description,
	})
	return existing == nil, err
}
