package logger

import (
	"time"

	"go.uber.org/zap"
)

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }
func UserID(v int64) zap.Field           { return zap.Int64("user_id", v) }
func TenantID(v int64) zap.Field         { return zap.Int64("tenant_id", v) }
func EntityType(v string) zap.Field      { return zap.String("entity_type", v) }
func EntityID(v int64) zap.Field         { return zap.Int64("entity_id", v) }
func Err(err error) zap.Field            { return zap.Error(err) }
