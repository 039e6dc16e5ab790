package dimension

// Dimension is a named scope (year, region, location) a list is created against.
type Dimension struct {
	ID           string  `json:"DimensionId"`
	Year         int     `json:"Year"`
	Month        *int    `json:"Month"`
	WeekNumber   *int    `json:"WeekNumber"`
	LocationID   *string `json:"LocationId"`
	Municipality *string `json:"Municipality"`
	Region       *string `json:"Region"`
}
