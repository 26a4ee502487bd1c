package bookingstate

type DisplayInfo struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

var displayInfo = map[State]DisplayInfo{
	StateDraft: {
		Label:       "Draft",
		Description: "Booking created but not yet scheduled or started",
		Icon:        "file-text",
		Color:       "gray",
	},
	StateBooked: {
		Label:       "Booked",
		Description: "Scheduled and waiting for the vehicle to arrive",
		Icon:        "calendar",
		Color:       "blue",
	},
	StateInProgress: {
		Label:       "In Progress",
		Description: "Vehicle is being washed",
		Icon:        "droplets",
		Color:       "yellow",
	},
	StateDeparted: {
		Label:       "Departed",
		Description: "Vehicle has left the bay, awaiting final confirmation",
		Icon:        "car",
		Color:       "purple",
	},
	StateCompleted: {
		Label:       "Completed",
		Description: "Wash finished",
		Icon:        "check-circle",
		Color:       "green",
	},
	StateCancelled: {
		Label:       "Cancelled",
		Description: "Booking was cancelled",
		Icon:        "x-circle",
		Color:       "red",
	},
}

// StateDisplayInfo returns presentation metadata for s. Unknown states get the raw
// state value as label with neutral styling.
func StateDisplayInfo(s State) DisplayInfo {
	if info, ok := displayInfo[s]; ok {
		return info
	}
	return DisplayInfo{Label: string(s), Description: "Unknown state", Icon: "help-circle", Color: "gray"}
}
