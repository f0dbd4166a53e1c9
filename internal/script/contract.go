package script

// Capability group names. These mirror the documented controller surface on
// the actuator; the set is extensible through configuration.
const (
	CapMovement   = "movement"
	CapSuspension = "suspension-position"
	CapCamera     = "camera"
	CapCleanup    = "cleanup"
)

// Contract is the ordered list of structural requirements a script body must
// satisfy, plus the denylist of constructs it must not contain. The zero
// value is not usable; start from DefaultContract.
type Contract struct {
	// ImportStmt must be the first non-blank, non-comment line.
	ImportStmt string

	// ControllerType is the constructor name for the hardware controller.
	ControllerType string

	// ReleaseCall is the controller method that frees hardware resources.
	// It must be the final controller call unless the request is marked
	// continuing.
	ReleaseCall string

	// Capabilities maps controller method names to their capability group.
	// A call outside this map is surfaced as an UnknownCapability warning,
	// never rejected: the actuator's controller may have grown methods this
	// container does not know about yet.
	Capabilities map[string]string

	// Denylist holds substrings that must not appear anywhere in the body.
	// Empty by default; extensible through configuration.
	Denylist []string
}

// DefaultContract returns the contract for the reference rover controller.
func DefaultContract() *Contract {
	return &Contract{
		ImportStmt:     "from Robot import *",
		ControllerType: "Rover",
		ReleaseCall:    "cleanup",
		Capabilities: map[string]string{
			// Drivetrain
			"forward":         CapMovement,
			"turn_left":       CapMovement,
			"turn_right":      CapMovement,
			"stop":            CapMovement,
			"drive":           CapMovement,
			"drive_instant":   CapMovement,
			"set_left_motor":  CapMovement,
			"set_right_motor": CapMovement,
			// Rocker-bogie suspension
			"set_servo_positions":    CapSuspension,
			"setup_sun_position":     CapSuspension,
			"setup_regular_position": CapSuspension,
			// Camera
			"capture_image": CapCamera,
			// Resource release
			"cleanup": CapCleanup,
		},
	}
}

// WithCapabilities returns a copy of the contract with extra method->group
// entries merged in. The receiver is not modified.
func (c *Contract) WithCapabilities(extra map[string]string) *Contract {
	merged := &Contract{
		ImportStmt:     c.ImportStmt,
		ControllerType: c.ControllerType,
		ReleaseCall:    c.ReleaseCall,
		Capabilities:   make(map[string]string, len(c.Capabilities)+len(extra)),
		Denylist:       append([]string(nil), c.Denylist...),
	}
	for method, group := range c.Capabilities {
		merged.Capabilities[method] = group
	}
	for method, group := range extra {
		merged.Capabilities[method] = group
	}
	return merged
}

// WithDenylist returns a copy of the contract with extra denied substrings
// appended. The receiver is not modified.
func (c *Contract) WithDenylist(entries []string) *Contract {
	merged := c.WithCapabilities(nil)
	merged.Denylist = append(merged.Denylist, entries...)
	return merged
}
