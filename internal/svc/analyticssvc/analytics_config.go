package analyticssvc

import "time"

// AnalyticsConfig holds configuration parameters for the analytics engine.
type AnalyticsConfig struct {
	// ChurnThreshold is the inactivity after which a customer counts as churned,
	// measured back from the most recent order in the dataset. Default is 180 days.
	ChurnThreshold time.Duration `env:"CHURN_THRESHOLD" default:"4320h"`

	// TopN limits the restaurant and item breakdowns. 0 disables the limit.
	TopN int `env:"TOP_N" default:"10"`
}
