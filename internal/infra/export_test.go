package infra

// RedisKey exposes the stored key name of a ride lock to the external tests.
func (l *RedisLocker) RedisKey(key string) string {
	return l.prefix + key
}
