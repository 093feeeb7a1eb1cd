package repository_test

import "time"

const (
	defaultWait = 30 * time.Second
	pollEvery   = 500 * time.Millisecond
)
