package loadtest

import "time"

// Config holds configuration for the estimate load test
type Config struct {
	BaseURL  string        // Base URL of the service
	NumItems int           // Number of line items to generate
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	LogFile  string        // Log file for test output
	Verbose  bool          // Enable verbose logging
}

// LineItem represents one estimate form submission
type LineItem struct {
	City             string
	Location         string
	ConstructionType string
	WorkType         string
	WorkDescription  string
	Volume           float64
	Unit             string
	UnitPrice        float64
}

// Stats holds test statistics
type Stats struct {
	ItemsGenerated  int
	ItemsSubmitted  int
	ItemsSuccessful int
	ItemsRejected   int
	ItemsFailed     int
	RowsOnPage      int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
