// Package config loads and saves the fretdrill settings file.
package config
