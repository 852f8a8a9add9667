package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ModuleQuestionsKey returns the cache key for a module's question bank.
func (r *CacheKeyStruct) ModuleQuestionsKey(moduleID int) string {
	return fmt.Sprintf("module:%d:questions", moduleID)
}

// RevokedTokenKey returns the denylist key for a revoked token ID.
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// RateLimitKey returns the shared counter key for a client address.
func (r *CacheKeyStruct) RateLimitKey(addr string) string {
	return fmt.Sprintf("rate_limit:%s", addr)
}

// AuditActivityChannel is the Redis PubSub channel carrying live audit events.
func (r *CacheKeyStruct) AuditActivityChannel() string {
	return "audit:activity"
}

var CacheKey = NewCacheKeyStruct()
