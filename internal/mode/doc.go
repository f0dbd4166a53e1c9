// Package mode implements the transmission-mode policy for the Rover Command Container.
//
// The rover link runs in one of two modes: interactive (WiFi-class link, the
// actuator can answer) or one-way (LoRa-class link, fire and forget). The
// policy table gates which command kinds are valid under each mode and
// whether a response is expected. The gate fails closed: a kind not listed
// under a mode is disallowed.
package mode
