// Package config provides layered application configuration.
//
// Configuration is assembled from two sources, in order of precedence:
//
//  1. Environment variables with the RETAILPULSE prefix
//     (e.g. RETAILPULSE_SERVER_PORT, RETAILPULSE_DATASET_PATH)
//  2. An optional YAML file (config.yaml next to the binary, or the
//     path in RETAILPULSE_CONFIG)
//
// The resulting Config is validated at load time; the process refuses
// to start with an invalid configuration.
package config
