package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/util"
)

const (
	FieldCandidateID   = "candidate_id"
	FieldCandidateName = "candidate"
	FieldResume        = "resume"
	FieldJDID          = "job_description_id"
	FieldJDTitle       = "job_description"
	FieldTextPreview   = "text_preview"
)

// previewLength limits text previews attached to log entries.
const previewLength = 80

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced by a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CandidateFields describes a candidate. Empty values are skipped.
func CandidateFields(id, name, resume string) []zap.Field {
	return StringFields(
		StringField{Key: FieldCandidateID, Value: id},
		StringField{Key: FieldCandidateName, Value: name},
		StringField{Key: FieldResume, Value: resume},
	)
}

func WithCandidateFields(logger *zap.Logger, id, name, resume string) *zap.Logger {
	return WithFields(logger, CandidateFields(id, name, resume)...)
}

// JobDescriptionFields describes a job description. Empty values are skipped.
func JobDescriptionFields(id, title string) []zap.Field {
	return StringFields(
		StringField{Key: FieldJDID, Value: id},
		StringField{Key: FieldJDTitle, Value: title},
	)
}

// TextPreview returns a field with the first characters of text.
func TextPreview(text string) zap.Field {
	return zap.String(FieldTextPreview, util.TruncateForLog(text, previewLength))
}
