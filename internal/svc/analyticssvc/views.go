package analyticssvc

// UnknownKey groups records whose breakdown field is blank.
const UnknownKey = "Unknown"

// Point is one bucket of a time series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SalesSummary holds the headline revenue figures.
type SalesSummary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

// CustomerSummary holds the headline customer figures. ChurnRate and
// DeliveryIssueRate are percentages; DeliveryIssueRate is nil when the
// dataset has no delivery_issues column.
type CustomerSummary struct {
	TotalCustomers    int      `json:"totalCustomers"`
	SalesPerCustomer  float64  `json:"salesPerCustomer"`
	ChurnedCustomers  int      `json:"churnedCustomers"`
	ChurnRate         float64  `json:"churnRate"`
	DeliveryIssueRate *float64 `json:"deliveryIssueRate,omitempty"`
}

// Breakdown aggregates the records sharing one value of a grouping column.
// Share is the group's percentage of total revenue.
type Breakdown struct {
	Key               string  `json:"key"`
	Revenue           float64 `json:"revenue"`
	Orders            int     `json:"orders"`
	Customers         int     `json:"customers"`
	Quantity          float64 `json:"quantity"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	Share             float64 `json:"share"`
}

// RestaurantRating is the mean rating of one restaurant over its rated orders.
type RestaurantRating struct {
	Restaurant string  `json:"restaurant"`
	MeanRating float64 `json:"meanRating"`
	Ratings    int     `json:"ratings"`
}

// Warning reports a section of a tab that could not be computed.
type Warning struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// SalesTab is the content of the Sales tab.
type SalesTab struct {
	Summary         SalesSummary `json:"summary"`
	MonthlyRevenue  []Point      `json:"monthlyRevenue"`
	DailyRevenue    []Point      `json:"dailyRevenue"`
	WeekdayRevenue  []Point      `json:"weekdayRevenue"`
	ByCategory      []Breakdown  `json:"byCategory"`
	ByPaymentMethod []Breakdown  `json:"byPaymentMethod"`
	Warnings        []Warning    `json:"warnings,omitempty"`
}

// CustomerTab is the content of the Customer tab.
type CustomerTab struct {
	Summary         CustomerSummary `json:"summary"`
	ByAgeGroup      []Breakdown     `json:"byAgeGroup"`
	ByPaymentMethod []Breakdown     `json:"byPaymentMethod"`
	Warnings        []Warning       `json:"warnings,omitempty"`
}

// ProductTab is the content of the Product tab.
type ProductTab struct {
	ByItem             []Breakdown        `json:"byItem"`
	ByRestaurant       []Breakdown        `json:"byRestaurant"`
	ByCategory         []Breakdown        `json:"byCategory"`
	RatingByRestaurant []RestaurantRating `json:"ratingByRestaurant"`
	Warnings           []Warning          `json:"warnings,omitempty"`
}
