package models

// Place is read-only reference data for the planner.
type Place struct {
	ID            int64    `json:"place_id"`
	Name          string   `json:"place_name"`
	Address       string   `json:"place_address"`
	ImageURL      string   `json:"place_image"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	AverageRating float64  `json:"average_rating"`
	FavoriteCount int      `json:"favorite_count"`
	ReviewCount   int      `json:"review_count"`
	RegionID      *int64   `json:"region_id,omitempty"`
	Category      string   `json:"category,omitempty"`
}

// HasCoordinates reports whether both coordinates are present.
func (p Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type Region struct {
	ID   int64  `json:"region_id"`
	Name string `json:"region_name"`
}

// PlaceSort names the orderings supported by place listings.
type PlaceSort string

const (
	PlaceSortRating    PlaceSort = "rating"
	PlaceSortFavorites PlaceSort = "favorites"
	PlaceSortReviews   PlaceSort = "reviews"
	PlaceSortName      PlaceSort = "name"
)

// PlaceFilter drives filtered, sorted and paginated place queries.
type PlaceFilter struct {
	RegionID *int64
	Category string
	Keyword  string
	Sort     PlaceSort
	Page     int
	PageSize int
}

type PlacePage struct {
	Places   []Place `json:"places"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// PlaceDetail is a place together with the caller's favorite status.
type PlaceDetail struct {
	Place
	IsFavorite bool `json:"is_favorite"`
}
