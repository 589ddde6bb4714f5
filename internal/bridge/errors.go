package bridge

import "errors"

var (
	ErrUnknownSwitch     = errors.New("unknown switch")
	ErrUnknownLine       = errors.New("unknown line")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrTimeWentBackwards = errors.New("poll time went backwards")
)
