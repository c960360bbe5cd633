package dashboardsvc

// GateConfig holds configuration parameters for the authentication and navigation gate.
type GateConfig struct {
	// DatasetPath is the order file rendered on the dashboard.
	// Supported formats are .csv, .txt, .tsv and .xlsx.
	DatasetPath string `env:"DATASET_PATH" default:"data/orders.csv"`
}
