// Package config implements configuration loading for the Rover Command Container.
//
// Settings merge in three layers: baked-in defaults, an optional YAML file
// (ROVERLINK_CONFIG or ./roverlink.yaml), then ROVERLINK_* environment
// variables. The merged result is validated before the container starts;
// a bad configuration is a startup failure, never a silent fallback.
package config
