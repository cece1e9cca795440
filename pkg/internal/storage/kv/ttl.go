package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// 没有原生按键 TTL 的后端（NATS KV）使用的包装格式.
const ttlMagic = "EBTTL1:"

type ttlValue struct {
	V []byte `json:"v"`
	E int64  `json:"e,omitempty"` // unix milliseconds; 0 means no expiry
}

// encodeWithTTL wraps the value when ttl>0; otherwise returns original value.
func encodeWithTTL(value []byte, ttl time.Duration, now time.Time) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	b, err := sonic.Marshal(ttlValue{V: value, E: now.Add(ttl).UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("marshal ttl value: %w", err)
	}

	return append([]byte(ttlMagic), b...), nil
}

// decodeWithTTL detects wrapper and reports whether the value has expired.
func decodeWithTTL(b []byte, now time.Time) ([]byte, bool, error) {
	if !bytes.HasPrefix(b, []byte(ttlMagic)) {
		return b, false, nil
	}

	var tv ttlValue
	if err := sonic.Unmarshal(b[len(ttlMagic):], &tv); err != nil {
		return nil, false, fmt.Errorf("unmarshal ttl value: %w", err)
	}

	if tv.E > 0 && now.UnixMilli() >= tv.E {
		return nil, true, nil
	}

	return tv.V, false, nil
}
