package model

import "time"

const (
	RoleUser       = "user"
	RoleHotelOwner = "hotelOwner"

	DefaultRecentCitiesLimit = 3

	PlaceholderImage       = "https://via.placeholder.com/150"
	PlaceholderEmailDomain = "temp.local"
)

// User is keyed by the identity provider subject, not by an ObjectID.
type User struct {
	ID                   string    `json:"id" bson:"_id"`
	Username             string    `json:"username" bson:"username"`
	Email                string    `json:"email" bson:"email"`
	Image                string    `json:"image" bson:"image"`
	Role                 string    `json:"role" bson:"role"`
	RecentSearchedCities []string  `json:"recentSearchedCities" bson:"recent_searched_cities"`
	CreatedAt            time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasPlaceholderProfile reports whether the record was created before the
// provider supplied a real email or image.
func (u *User) HasPlaceholderProfile() bool {
	return u.Email == PlaceholderEmail(u.ID) || u.Image == PlaceholderImage
}

func PlaceholderEmail(userID string) string {
	return userID + "@" + PlaceholderEmailDomain
}

// PushRecentCity appends city to the bounded, ordered history. A city that is
// already present moves to the end instead of being duplicated, and the
// oldest entries are dropped once the limit is exceeded.
func PushRecentCity(cities []string, city string, limit int) []string {
	if limit <= 0 {
		limit = DefaultRecentCitiesLimit
	}

	out := make([]string, 0, limit)
	for _, c := range cities {
		if c != city {
			out = append(out, c)
		}
	}
	out = append(out, city)

	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
