// Package config loads service configuration from the environment. Missing
// required values fail loading outright so that a misconfigured process never
// serves traffic.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds every setting the service reads.
type Config struct {
	Port              int
	CanvasAPIURL      string
	CanvasAccessToken string
	CanvasAccountID   string
	DataLochDSN       string
	DatabaseDSN       string
	RedisAddr         string

	// GradeDistributionMaxDistinctCourses bounds how many companion courses
	// a grade distribution reports.
	GradeDistributionMaxDistinctCourses int
}

// Load reads and validates configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:      8080,
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	var err error
	if cfg.CanvasAPIURL, err = required("CANVAS_API_URL"); err != nil {
		return nil, err
	}
	if cfg.CanvasAccessToken, err = required("CANVAS_ACCESS_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.CanvasAccountID, err = required("CANVAS_ACCOUNT_ID"); err != nil {
		return nil, err
	}
	if cfg.DataLochDSN, err = required("DATA_LOCH_URL"); err != nil {
		return nil, err
	}
	if cfg.DatabaseDSN, err = required("DATABASE_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = "localhost:6379"
	}

	maxCourses, err := required("GRADE_DISTRIBUTION_MAX_DISTINCT_COURSES")
	if err != nil {
		return nil, err
	}
	cfg.GradeDistributionMaxDistinctCourses, err = strconv.Atoi(maxCourses)
	if err != nil || cfg.GradeDistributionMaxDistinctCourses < 1 {
		return nil, fmt.Errorf("GRADE_DISTRIBUTION_MAX_DISTINCT_COURSES must be a positive integer, got %q", maxCourses)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port, err = strconv.Atoi(port)
		if err != nil || cfg.Port < 1 {
			return nil, fmt.Errorf("PORT must be a positive integer, got %q", port)
		}
	}
	return cfg, nil
}

func required(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", name)
	}
	return value, nil
}
