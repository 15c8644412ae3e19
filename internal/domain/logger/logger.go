package logger

import (
	"log/slog"
	"time"
)

// QueryLogger times one repository call and logs its outcome with the db type tag.
type QueryLogger struct {
	Operation string
	Table     string
	ChannelID string
	StartTime time.Time
}

func NewQueryLogger(operation, table, channelID string) *QueryLogger {
	return &QueryLogger{
		Operation: operation,
		Table:     table,
		ChannelID: channelID,
		StartTime: time.Now(),
	}
}

func (l *QueryLogger) attrs() []any {
	attrs := []any{
		slog.String("type", "db"),
		slog.String("operation", l.Operation),
		slog.String("table", l.Table),
		slog.Duration("took", time.Since(l.StartTime)),
	}
	if l.ChannelID != "" {
		attrs = append(attrs, slog.String("channel_id", l.ChannelID))
	}
	return attrs
}

// Log records err, or the affected row count on success. It returns err unchanged.
func (l *QueryLogger) Log(err error, rowsAffected int64) error {
	if err != nil {
		slog.Error("Query failed", append(l.attrs(), slog.Any("error", err))...)
		return err
	}
	slog.Debug("Query executed", append(l.attrs(), slog.Int64("affected_rows", rowsAffected))...)
	return nil
}
