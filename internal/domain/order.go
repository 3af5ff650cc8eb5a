package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderLine is a single sales-order item as imported from the ERP export.
// Date fields stay as raw strings because the export mixes formats; they are
// parsed on demand with ParseOrderDate.
type OrderLine struct {
	ManifestCode  string `bson:"manifestCode" json:"manifestCode"`
	ManifestNotes string `bson:"manifestNotes" json:"manifestNotes"`
	ManifestDate  string `bson:"manifestDate" json:"manifestDate"`

	OrderNumber string `bson:"orderNumber" json:"orderNumber"`
	Customer    string `bson:"customer" json:"customer"`
	OrderDate   string `bson:"orderDate" json:"orderDate"`

	ProductCode string          `bson:"productCode" json:"productCode"`
	Description string          `bson:"description" json:"description"`
	Unit        string          `bson:"unit" json:"unit"`
	QtyOrdered  decimal.Decimal `bson:"qtyOrdered" json:"qtyOrdered"`
	QtyLinked   decimal.Decimal `bson:"qtyLinked" json:"qtyLinked"`
	ProductType string          `bson:"productType" json:"productType"`
	UnitPrice   decimal.Decimal `bson:"unitPrice" json:"unitPrice"`

	DeliveryDate     string `bson:"deliveryDate" json:"deliveryDate"`
	City             string `bson:"city" json:"city"`
	State            string `bson:"state" json:"state"`
	DeliveryMethod   string `bson:"deliveryMethod" json:"deliveryMethod"`
	StoreRequisition bool   `bson:"storeRequisition" json:"storeRequisition"`

	// AltDelivery is 1 when the order ships somewhere other than the
	// customer's registered address.
	AltDelivery   int    `bson:"altDelivery" json:"altDelivery"`
	CustomerCity  string `bson:"customerCity" json:"customerCity"`
	CustomerState string `bson:"customerState" json:"customerState"`
	DeliveryCity  string `bson:"deliveryCity" json:"deliveryCity"`
	DeliveryState string `bson:"deliveryState" json:"deliveryState"`
	Address       string `bson:"address" json:"address"`
}

// EffectiveQty is the demand quantity for planning: the quantity already
// linked to a manifest when present, otherwise the full ordered quantity.
func (l OrderLine) EffectiveQty() decimal.Decimal {
	if !l.QtyLinked.IsZero() {
		return l.QtyLinked
	}
	return l.QtyOrdered
}

// HasManifest reports whether the line is linked to a shipping manifest.
func (l OrderLine) HasManifest() bool {
	return !ManifestPlaceholder(l.ManifestCode)
}

// StockItem is an on-hand balance row for one product in one stock sector.
type StockItem struct {
	ProductID     string          `bson:"productId" json:"productId"`
	Code          string          `bson:"code" json:"code"`
	ProductTypeID string          `bson:"productTypeId" json:"productTypeId"`
	DefaultSector string          `bson:"defaultSector" json:"defaultSector"`
	Description   string          `bson:"description" json:"description"`
	Sector        string          `bson:"sector" json:"sector"`
	FinalBalance  decimal.Decimal `bson:"finalBalance" json:"finalBalance"`
}

// ShelfKit declares the two components a shelf product is built from. Shelves
// are assembled to order, so their demand is planned at the component level.
type ShelfKit struct {
	ShelfCode         string          `bson:"shelfCode" json:"shelfCode"`
	ColumnCode        string          `bson:"columnCode" json:"columnCode"`
	ColumnDescription string          `bson:"columnDescription" json:"columnDescription"`
	ColumnQty         decimal.Decimal `bson:"columnQty" json:"columnQty"`
	TrayCode          string          `bson:"trayCode" json:"trayCode"`
	TrayDescription   string          `bson:"trayDescription" json:"trayDescription"`
	TrayQty           decimal.Decimal `bson:"trayQty" json:"trayQty"`
}

// Normalized product code used as the consolidation key.
func productKey(code string) string {
	return strings.TrimSpace(code)
}
