package domain

// Simulated vehicle driving toward a dispatch destination.
// A Vehicle is the mutable state of one simulation run and is not
// shared between runs.
type Vehicle struct {
	ID       string
	Position Coordinates
	Steps    int
}

func NewVehicle(id string, start Coordinates) *Vehicle {
	return &Vehicle{
		ID:       id,
		Position: start,
	}
}

// MoveTo places the vehicle at pos and counts one step.
func (v *Vehicle) MoveTo(pos Coordinates) {
	v.Position = pos
	v.Steps++
}
