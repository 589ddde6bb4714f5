package config

import "errors"

// Configuration loading errors
var (
	ErrConfigFileRead  = errors.New("failed to read config file")
	ErrConfigUnmarshal = errors.New("failed to unmarshal config")
)

// Configuration validation errors
var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrPinShared       = errors.New("pin used more than once")
	ErrUnknownSwitch   = errors.New("binding references unknown switch")
	ErrUnknownLine     = errors.New("binding references unknown line")
	ErrInvalidInterval = errors.New("interval must be positive")
)
