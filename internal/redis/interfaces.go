package redis

import (
	"ridewallet/internal/middleware"
	"ridewallet/internal/service"
)

// Ensure concrete types implement the interfaces their consumers declare.
var (
	_ service.OTPRegistry      = (*OTPStore)(nil)
	_ middleware.ResponseCache = (*CacheStore)(nil)
)
