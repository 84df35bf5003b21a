package model

// CodeAnalytics represents aggregated scan analytics for a single dynamic code
type CodeAnalytics struct {
	CodeID           string            `json:"codeId"`
	TargetURL        string            `json:"targetUrl"`
	TotalScans       int64             `json:"totalScans"`       // lifetime counter from the code record
	Last7Days        int               `json:"last7Days"`        // rolling 7-day total over the sampled window
	ScansByDay       []TimeSeriesPoint `json:"scansByDay"`       // last 30 calendar days, zero-filled
	DeviceBreakdown  map[string]int    `json:"deviceBreakdown"`  // scans by device type (Mobile/Desktop)
	BrowserBreakdown map[string]int    `json:"browserBreakdown"` // scans by browser
	TopCountries     []CountryCount    `json:"topCountries"`     // top 5 countries by scans
	SampleSize       int               `json:"sampleSize"`       // number of scan rows aggregated
}

// TimeSeriesPoint represents a point in time-series data
type TimeSeriesPoint struct {
	Date  string `json:"date"`  // Date in "YYYY-MM-DD" format
	Value int64  `json:"value"` // Number of scans on this date
}

// CountryCount is one entry of the per-country breakdown
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}
