package domain

import "time"

// Source column names, as they appear (lower-cased) in the dataset header.
const (
	ColumnOrderID        = "order_id"
	ColumnCustomerID     = "customer_id"
	ColumnOrderDate      = "order_date"
	ColumnQuantity       = "quantity"
	ColumnPrice          = "price"
	ColumnItemName       = "item_name"
	ColumnCategory       = "category"
	ColumnRestaurantName = "restaurant_name"
	ColumnPaymentMethod  = "payment_method"
	ColumnAge            = "age"
	ColumnRating         = "rating"
	ColumnSignupDate     = "signup_date"
	ColumnLastOrderDate  = "last_order_date"
	ColumnRatingDate     = "rating_date"
	ColumnDeliveryIssues = "delivery_issues"
)

// EssentialColumns lists the columns without which no row can be kept.
func EssentialColumns() []string {
	return []string{ColumnOrderID, ColumnCustomerID, ColumnOrderDate}
}

// Sentinels substituted for blank text fields.
const (
	UnknownItem       = "Unknown Item"
	UnknownCategory   = "Unknown Category"
	UnknownRestaurant = "Unknown Restaurant"
)

// OrderRecord is one cleaned row of the order dataset.
// Missing optional timestamps are the zero time.
type OrderRecord struct {
	OrderID        string
	CustomerID     string
	OrderDate      time.Time
	ItemName       string
	Category       string
	RestaurantName string
	Quantity       float64
	Price          float64
	Sales          float64 // Quantity * Price
	PaymentMethod  string
	AgeGroup       string
	Rating         *float64
	DeliveryIssue  *bool
	SignupDate     time.Time
	LastOrderDate  time.Time
	RatingDate     time.Time

	// Calendar features derived from OrderDate.
	OrderDay   time.Time // midnight UTC
	OrderMonth time.Time // first day of month, midnight UTC
	Weekday    string
}
