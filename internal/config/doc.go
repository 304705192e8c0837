// Package config provides configuration structures and utilities for epsfdir.
// It defines the input tables and output directory used by the chart
// generator, the artifact filter and output paths used by the model exporter,
// and where run history is kept.
package config
