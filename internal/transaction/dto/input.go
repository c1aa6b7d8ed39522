package dto

type CartLine struct {
	ProductID string
	Quantity  int
}

// ExportRow is one line item in the CSV export.
type ExportRow struct {
	Date          string `csv:"date"`
	TransactionID string `csv:"transaction_id"`
	Item          string `csv:"item"`
	Quantity      int    `csv:"qty"`
	Price         string `csv:"price"`
	LineTotal     string `csv:"line_total"`
	Synced        string `csv:"synced"`
}
