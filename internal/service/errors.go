package service

import "errors"

var (
	ErrNoData              = errors.New("no data uploaded for this session")
	ErrPersistenceDisabled = errors.New("calculation persistence is not configured")
	ErrRunNotFound         = errors.New("calculation run not found")
)
