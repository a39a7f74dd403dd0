package model

const (
	ExtraPerNight = "night"
	ExtraPerStay  = "stay"
)

// ExtraRate prices one optional add-on, either per night or once per stay.
type ExtraRate struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
	Per    string  `json:"per"`
}
