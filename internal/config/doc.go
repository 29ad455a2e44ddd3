// Package config loads the simulator configuration from a YAML file.
//
// Values may reference environment variables as ${VAR}; an optional .env file
// in the working directory is loaded before expansion.
package config
