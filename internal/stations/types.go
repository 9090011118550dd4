package stations

// Station is one record in the transit directory snapshot.
type Station struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Zone        string   `json:"zone" yaml:"zone"`
	Lines       []string `json:"lines" yaml:"lines"`
	Lat         float64  `json:"lat" yaml:"lat"`
	Lon         float64  `json:"lon" yaml:"lon"`
}

// LookupRequest represents the query parameters for the directory endpoint.
type LookupRequest struct {
	Query string `form:"q" binding:"required,min=1"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}
