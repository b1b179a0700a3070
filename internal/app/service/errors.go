package service

import "errors"

var (
	ErrURLNotFound   = errors.New("URL not found")
	ErrPoolExhausted = errors.New("no available codes")
	ErrCodeCollision = errors.New("allocated code is already bound")
)
