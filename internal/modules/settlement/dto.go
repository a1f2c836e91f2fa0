package settlement

import "salonbooking/internal/domain"

// LineCommission is the payout attributed to one line. Source says whether
// the amount was stored on the line or derived from the current rate table.
type LineCommission struct {
	LineID    int64           `json:"line_id"`
	LineType  domain.LineType `json:"line_type"`
	StylistID int64           `json:"stylist_id,omitempty"`
	Amount    float64         `json:"amount"`
	Source    string          `json:"source"` // "stored" or "derived"
}

// Breakdown is the full settlement of a booking, computed on read. Nothing in
// it is persisted except the commission snapshots taken at completion.
type Breakdown struct {
	BookingID       int64                `json:"booking_id"`
	Status          domain.BookingStatus `json:"status"`
	ServiceSubtotal float64              `json:"service_subtotal"`
	ProductSubtotal float64              `json:"product_subtotal"`
	Subtotal        float64              `json:"subtotal"`
	Discount        float64              `json:"discount"`
	Taxable         float64              `json:"taxable"`
	TaxRate         float64              `json:"tax_rate"`
	Tax             float64              `json:"tax"`
	Total           float64              `json:"total"`
	Commissions     []LineCommission     `json:"commissions"`
	ReceiptNumber   string               `json:"receipt_number,omitempty"`
}
