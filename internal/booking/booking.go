package booking

import (
	"time"

	"carwash/internal/bookingstate"
	"carwash/internal/pos"
	"carwash/internal/vehicle"
)

type Booking struct {
	ID            string             `json:"id"`
	VehicleID     string             `json:"vehicleId"`
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone,omitempty"`
	ScheduledAt   *time.Time         `json:"scheduledAt,omitempty"`
	Subtotal      string             `json:"subtotal"`
	Discount      string             `json:"discount"`
	Tax           string             `json:"tax"`
	TotalAmount   string             `json:"totalAmount"`
	Currency      string             `json:"currency"`
	Status        bookingstate.State `json:"status"`
	CreatedBy     *string            `json:"createdBy,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type ListItem struct {
	ID           string             `json:"id"`
	VehicleID    string             `json:"vehicleId"`
	Plate        string             `json:"plate"`
	WashStatus   string             `json:"washStatus"`
	CustomerName string             `json:"customerName"`
	ScheduledAt  *time.Time         `json:"scheduledAt,omitempty"`
	TotalAmount  string             `json:"totalAmount"`
	Currency     string             `json:"currency"`
	Status       bookingstate.State `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type LineItem struct {
	Position    int    `json:"position"`
	ServiceCode string `json:"serviceCode"`
	Description string `json:"description,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"lineTotal"`
}

// StateView is the lifecycle block the dashboard renders next to a booking.
// Initialized is false for bookings that predate state history.
type StateView struct {
	Initialized  bool                     `json:"initialized"`
	State        bookingstate.State       `json:"state,omitempty"`
	Display      bookingstate.DisplayInfo `json:"display"`
	ValidActions []bookingstate.Action    `json:"validActions"`
}

type Detail struct {
	Booking Booking          `json:"booking"`
	Lines   []LineItem       `json:"lines"`
	Vehicle *vehicle.Vehicle `json:"vehicle,omitempty"`
	State   StateView        `json:"state"`
}

type CreateInput struct {
	Vehicle       vehicle.UpsertInput
	CustomerName  string
	CustomerPhone string
	ScheduledAt   *time.Time
	Cart          pos.Cart
}

type ListFilter struct {
	Status bookingstate.State
	Limit  int
	Offset int
}

type Page struct {
	Items  []ListItem `json:"items"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

func stateView(table bookingstate.Table, st bookingstate.State, found bool) StateView {
	if !found {
		return StateView{Initialized: false, ValidActions: []bookingstate.Action{}}
	}
	return StateView{
		Initialized:  true,
		State:        st,
		Display:      bookingstate.StateDisplayInfo(st),
		ValidActions: table.ValidActions(st),
	}
}
