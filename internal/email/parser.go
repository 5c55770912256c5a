package email

import (
	"log/slog"
	"maps"
	"slices"

	"github.com/hal9000y/email-assistant/internal/logging"
)

// Parser wraps the pure parse functions with a diagnostic trace of the raw
// input.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a Parser. A nil logger discards the trace.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Parser{logger: logger.With(slog.String("component", "email.parser"))}
}

// ParseInternal is ParseInternal with tracing.
func (p *Parser) ParseInternal(record map[string]string) (Record, error) {
	p.trace("internal", record, KeyAuthor)
	return ParseInternal(record)
}

// ParseGmail is ParseGmail with tracing.
func (p *Parser) ParseGmail(record map[string]string) (Record, error) {
	p.trace("gmail", record, KeyFrom)
	return ParseGmail(record)
}

func (p *Parser) trace(schema string, record map[string]string, senderKey string) {
	keys := slices.Sorted(maps.Keys(record))

	p.logger.Debug("email record received",
		slog.String("schema", schema),
		slog.Any("keys", keys),
		logging.Sender(record[senderKey]),
		slog.String("subject", record[KeySubject]),
		slog.String("id", record[KeyID]),
	)
}
